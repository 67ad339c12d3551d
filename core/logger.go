package core

// Logger is any service that can log messages and report errors.
// args may hold errors, maps of extra data and a Person to attach to the report.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the authenticated caller attached to error reports.
type Person struct {
	ID       string
	Username string
	Email    string
}
