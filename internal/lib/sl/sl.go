// Package sl содержит мелкие помощники для структурированного логирования
// через slog.
package sl

import "log/slog"

// Err формирует атрибут лога с ключом "error" и текстом ошибки.
// Единообразный вывод ошибок упрощает поиск по журналу.
//
// Пример:
//
//	log.Error("failed to resolve plan", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.String("error", err.Error())
}
