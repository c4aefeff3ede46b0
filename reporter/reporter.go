package reporter

type Context = map[string]any

// Reporter represents an external reporting tool which can be hooked into the parsers to learn about malformed
// input that was recovered from, such as an encoded word kept verbatim because its charset is unknown or an address
// list that was only partially parsed.
type Reporter interface {
	ReportMessage(string) error
	ReportMessageWithContext(string, Context) error
}
