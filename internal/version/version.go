// Package version хранит сведения о сборке, зашиваемые через -ldflags:
//
//	-X .../internal/version.version=v1.2.3
//	-X .../internal/version.commit=abc1234
//	-X .../internal/version.date=2026-09-01
package version

import "fmt"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// String возвращает строку сборки для health-эндпоинта и логов старта.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
}
