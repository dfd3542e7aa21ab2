package service

import (
	"strings"

	"github.com/biter777/countries"
	"github.com/nyaruka/phonenumbers"
	"github.com/shopspring/decimal"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"xojoc.pw/useragent"
)

// normalizePhone validates a phone number and returns its E.164 form
func normalizePhone(phone string) (string, error) {
	num, err := phonenumbers.Parse(strings.TrimSpace(phone), "")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", validation("phone", "invalid phone number, use the international format")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// normalizeCountry returns the ISO alpha-2 code of a country name or code, empty if unknown
func normalizeCountry(country string) string {
	country = strings.TrimSpace(country)
	if country == "" {
		return ""
	}
	code := countries.ByName(country)
	if code == countries.Unknown {
		return ""
	}
	return code.Alpha2()
}

// clientInfo is what a click stores about the visitor
type clientInfo struct {
	Device  string
	Browser string
	OS      string
}

func parseUserAgent(userAgent string) clientInfo {
	info := clientInfo{Device: "desktop", Browser: "unknown", OS: "unknown"}
	ua := useragent.Parse(userAgent)
	if ua == nil {
		return info
	}
	switch {
	case ua.Type == useragent.Crawler:
		info.Device = "bot"
	case ua.Tablet:
		info.Device = "tablet"
	case ua.Mobile:
		info.Device = "mobile"
	}
	if ua.Name != "" {
		info.Browser = ua.Name
	}
	if ua.OS != "" {
		info.OS = ua.OS
	}
	return info
}

func pagingMeta(page, limit int, count int64, order string, filter map[string]interface{}) model.PagingMeta {
	if filter == nil {
		filter = map[string]interface{}{}
	}
	return model.PagingMeta{Page: page, Count: count, Limit: limit, Order: order, Filter: filter}
}

func decimalFromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
