package catalog

import (
	"fmt"
	"time"
)

// vietnam is the fixed GMT+7 zone used for timestamps shown to admins.
var vietnam = time.FixedZone("GMT+7", 7*60*60)

// FormatDuration renders seconds as m:ss. Zero or negative input yields "0:00".
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatLocalTime renders t as "YYYY-MM-DD HH:MM:SS" in GMT+7.
func FormatLocalTime(t time.Time) string {
	return t.In(vietnam).Format(time.DateTime)
}
