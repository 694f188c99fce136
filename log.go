package poptravel

import "go.uber.org/zap"

// newLogger builds the application logger. Development mode trades JSON for
// console output.
func newLogger(development bool) (*zap.SugaredLogger, error) {
	var l *zap.Logger
	var err error
	if development {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
