package models

const (
	DecisionNone = "None"

	MethodPickup   = "自提"
	MethodDelivery = "外卖"

	ReasonAPIError  = "API_ERROR"
	ReasonBadJSON   = "JSON_PARSE_ERROR"
	ReasonNoOptions = "NO_OPTIONS_IN_RANGE"
)

// DecisionRecord is the oracle's normalized reply for one customer.
type DecisionRecord struct {
	Decision string  `json:"decision"`
	Brand    string  `json:"brand"`
	Method   string  `json:"method"`
	Item     string  `json:"item"`
	Price    float64 `json:"price"`
	Reason   string  `json:"reason"`
}

// Declined reports whether the record is a no-purchase outcome.
func (d DecisionRecord) Declined() bool {
	return d.Decision == DecisionNone || d.Decision == ""
}

// Decline builds the canonical no-purchase record with a reason tag. It is
// used both for genuine refusal fallbacks and for oracle failures.
func Decline(reason string) DecisionRecord {
	return DecisionRecord{Decision: DecisionNone, Price: 0, Reason: reason}
}

// SimulationRow is one flattened line of the exported decision log:
// a profile subset joined with the decision record.
type SimulationRow struct {
	CustomerID       string  `json:"customer_id" parquet:"name=customer_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	AgeGroup         string  `json:"age_group" parquet:"name=age_group, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Occupation       string  `json:"occupation" parquet:"name=occupation, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Income           int     `json:"income" parquet:"name=income, type=INT32"`
	Preference       string  `json:"preference" parquet:"name=preference, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	PriceSensitivity string  `json:"price_sensitivity" parquet:"name=price_sensitivity, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Decision         string  `json:"decision" parquet:"name=decision, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Brand            string  `json:"brand" parquet:"name=brand, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Method           string  `json:"method" parquet:"name=method, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Item             string  `json:"item" parquet:"name=item, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Price            float64 `json:"price" parquet:"name=price, type=DOUBLE"`
	Reason           string  `json:"reason" parquet:"name=reason, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

// NewSimulationRow joins a customer profile with their decision.
func NewSimulationRow(customer *CustomerProfile, decision DecisionRecord) SimulationRow {
	return SimulationRow{
		CustomerID:       customer.ID,
		AgeGroup:         customer.AgeGroup,
		Occupation:       customer.Occupation,
		Income:           customer.Income,
		Preference:       customer.Preference,
		PriceSensitivity: customer.PriceSensitivity,
		Decision:         decision.Decision,
		Brand:            decision.Brand,
		Method:           decision.Method,
		Item:             decision.Item,
		Price:            decision.Price,
		Reason:           decision.Reason,
	}
}

// DecisionTally counts decision tokens across a finished run.
type DecisionTally map[string]int

func TallyDecisions(rows []SimulationRow) DecisionTally {
	tally := make(DecisionTally)
	for _, row := range rows {
		tally[row.Decision]++
	}
	return tally
}
