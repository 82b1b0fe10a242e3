// Package logger wraps zerolog with the field conventions used by walletmux.
//
// Components obtain a tagged logger with Get("provider") or WithComponent and
// log with map fields:
//
//	log := logger.Get("proxy")
//	log.Info("provider selected", logger.Fields(logger.FieldProviderUUID, id))
package logger
