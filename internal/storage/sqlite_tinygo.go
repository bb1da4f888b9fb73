//go:build tinygo

package storage

import (
	"errors"

	"acorn/acornos/services/logger"
)

func openSQLite(cfg Config, log logger.Logger) (Store, error) {
	_ = cfg
	_ = log
	return nil, errors.New("sqlite storage is not available on this target")
}
