package countries

import "strings"

// alpha2ByName 常见国家全称与别名到 ISO-3166 alpha-2 的映射（大写键）
var alpha2ByName = map[string]string{
	"FRANCE":          "FR",
	"GERMANY":         "DE",
	"DEUTSCHLAND":     "DE",
	"SPAIN":           "ES",
	"ESPANA":          "ES",
	"ITALY":           "IT",
	"ITALIA":          "IT",
	"NETHERLANDS":     "NL",
	"THE NETHERLANDS": "NL",
	"HOLLAND":         "NL",
	"BELGIUM":         "BE",
	"LUXEMBOURG":      "LU",
	"PORTUGAL":        "PT",
	"AUSTRIA":         "AT",
	"IRELAND":         "IE",
	"DENMARK":         "DK",
	"SWEDEN":          "SE",
	"FINLAND":         "FI",
	"POLAND":          "PL",
	"CZECH REPUBLIC":  "CZ",
	"CZECHIA":         "CZ",
	"SLOVAKIA":        "SK",
	"SLOVENIA":        "SI",
	"HUNGARY":         "HU",
	"ROMANIA":         "RO",
	"BULGARIA":        "BG",
	"GREECE":          "GR",
	"CROATIA":         "HR",
	"ESTONIA":         "EE",
	"LATVIA":          "LV",
	"LITHUANIA":       "LT",
	"UNITED KINGDOM":  "GB",
	"GREAT BRITAIN":   "GB",
	"ENGLAND":         "GB",
	"SCOTLAND":        "GB",
	"WALES":           "GB",
	"UK":              "GB",
	"SWITZERLAND":     "CH",
	"NORWAY":          "NO",
	"ICELAND":         "IS",
	"UNITED STATES":   "US",
	"UNITED STATES OF AMERICA": "US",
	"USA":             "US",
	"CANADA":          "CA",
	"AUSTRALIA":       "AU",
	"NEW ZEALAND":     "NZ",
	"JAPAN":           "JP",
	"CHINA":           "CN",
	"SOUTH KOREA":     "KR",
	"KOREA":           "KR",
	"SINGAPORE":       "SG",
	"HONG KONG":       "HK",
	"MEXICO":          "MX",
	"BRAZIL":          "BR",
	"ARGENTINA":       "AR",
	"SOUTH AFRICA":    "ZA",
	"INDIA":           "IN",
	"ISRAEL":          "IL",
	"TURKEY":          "TR",
	"TURKIYE":         "TR",
	"UNITED ARAB EMIRATES": "AE",
	"UAE":             "AE",
}

// customsRequired 发货需报关的目的国（alpha-2）
var customsRequired = map[string]bool{
	"GB": true,
	"CH": true,
	"US": true,
	"CA": true,
	"AU": true,
	"NO": true,
}

// ToAlpha2 将国家名称归一化为 ISO-3166 alpha-2 代码。
// 已是两位代码的输入转大写返回；未识别的输入原样返回。
func ToAlpha2(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}
	upper := strings.ToUpper(trimmed)
	if code, ok := alpha2ByName[upper]; ok {
		return code
	}
	if IsAlpha2(upper) {
		return upper
	}
	return trimmed
}

// IsAlpha2 判断字符串是否形如 alpha-2 代码（两位大写字母）
func IsAlpha2(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// RequiresCustoms 目的国是否需要报关资料
func RequiresCustoms(alpha2 string) bool {
	return customsRequired[strings.ToUpper(strings.TrimSpace(alpha2))]
}
