package alphavantage

// Quote is the latest traded state of one symbol.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percent_change"`
}

// ClosePoint is one daily close, as returned upstream (newest first).
type ClosePoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// Wire shapes. Alpha Vantage keys every field with a numbered label and
// encodes every number as a string.

type quoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Price         string `json:"05. price"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

type seriesResponse struct {
	Series map[string]struct {
		Close string `json:"4. close"`
	} `json:"Time Series (Daily)"`
}
