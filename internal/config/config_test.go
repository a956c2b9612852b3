package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/ben/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":5000")
			convey.So(cfg.Store, convey.ShouldEqual, config.StoreSQLite)
			convey.So(cfg.DatabasePath, convey.ShouldEqual, "data/ben.db")
			convey.So(cfg.AuditLogPath, convey.ShouldEqual, "logs/audit.log")
			convey.So(cfg.AuditQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.TrustProxy, convey.ShouldBeTrue)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid fields", t, func() {
		ctx := context.Background()

		convey.Convey("When the store is unknown", func() {
			cfg := config.New(ctx)
			cfg.Store = "redis"

			convey.Convey("Then validation fails with ErrInvalidConfig", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "unknown store")
			})
		})

		convey.Convey("When sqlite has no database path", func() {
			cfg := config.New(ctx)
			cfg.DatabasePath = " "

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the memory store has no database path", func() {
			cfg := config.New(ctx)
			cfg.Store = config.StoreMemory
			cfg.DatabasePath = ""

			convey.Convey("Then validation passes", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the audit queue size is negative", func() {
			cfg := config.New(ctx)
			cfg.AuditQueueSize = -1

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
