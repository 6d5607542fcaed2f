package models

// Requests for evaluation HTTP endpoints. Defined in domain for consistency and reuse.

type EvaluateRequest struct {
	ISBN            string  `query:"isbn" json:"isbn" validate:"required,min=10,max=13"`
	Condition       string  `query:"condition" json:"condition" default:"good" validate:"oneof=new like_new very_good good acceptable poor"`
	AcquisitionCost float64 `query:"cost" json:"cost" validate:"gte=0"`

	// Series identity, when the scanner knows it; drives the series rules.
	SeriesName  string `query:"series" json:"series"`
	SeriesIndex int    `query:"series_index" json:"series_index" validate:"gte=0"`

	// Threshold overrides; zero values fall back to the active configuration.
	MinAutobuyProfit float64 `query:"min_profit" json:"min_profit" validate:"gte=0"`
}

type SeriesRequest struct {
	ISBN       string `query:"isbn" json:"isbn" validate:"required,min=10,max=13"`
	SeriesName string `query:"series" json:"series" validate:"required"`
}

type ProfitRequest struct {
	ISBN            string  `query:"isbn" json:"isbn" validate:"required,min=10,max=13"`
	AcquisitionCost float64 `query:"cost" json:"cost" validate:"gte=0"`
}

type FreshnessRequest struct {
	ISBN string `query:"isbn" json:"isbn" validate:"required,min=10,max=13"`
}

type ScansRequest struct {
	Location string `query:"location" json:"location"`
	From     string `query:"from" json:"from"`
	To       string `query:"to" json:"to"`
	Limit    int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}
