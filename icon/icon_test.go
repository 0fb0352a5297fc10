package icon

import (
	"testing"

	"github.com/mpvsource/mpvsource/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Icon Get", t, func() {
		Convey("Should fall back to plain for unknown variants", func() {
			viper.Set(key.IconsVariant, "unknown")
			So(Get(Success), ShouldEqual, "✓")
		})

		Convey("Should honour the configured variant", func() {
			viper.Set(key.IconsVariant, squares)
			So(Get(Fail), ShouldEqual, "🟥")
		})

		Convey("Should return nothing for unregistered icons", func() {
			So(Get(Icon(999)), ShouldBeEmpty)
		})
	})
}
