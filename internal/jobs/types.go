package jobs

const TaskPrewarmQuotes = "prewarm:quotes"
