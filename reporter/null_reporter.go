package reporter

type NullReporter struct{}

func (*NullReporter) ReportMessage(string) error {
	return nil
}

func (*NullReporter) ReportMessageWithContext(string, Context) error {
	return nil
}
