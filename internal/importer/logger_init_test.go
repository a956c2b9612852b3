package importer

import "github.com/okian/ben/pkg/logger"

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}
