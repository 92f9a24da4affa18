package agent

import (
	"fmt"

	cmtlog "github.com/cometbft/cometbft/libs/log"
)

// gormLogger routes gorm output onto a cometbft logger.
type gormLogger struct {
	logger cmtlog.Logger
}

func newGormLogger(lg cmtlog.Logger) gormLogger {
	return gormLogger{logger: lg}
}

// Print receives ("sql", source, elapsed, query, vars, rows) for statements
// and ("log", source, msg...) for everything else.
func (l gormLogger) Print(v ...interface{}) {
	if len(v) == 0 {
		return
	}
	switch v[0] {
	case "sql":
		if len(v) >= 6 {
			l.logger.Debug("sql", "source", v[1], "elapsed", v[2], "query", v[3], "vars", fmt.Sprint(v[4]), "rows", v[5])
			return
		}
	case "log", "error":
		if len(v) >= 3 {
			l.logger.Error("gorm", "source", v[1], "msg", fmt.Sprint(v[2:]...))
			return
		}
	}
	l.logger.Debug("gorm", "msg", fmt.Sprint(v...))
}
