package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Record is a loosely shaped inventory row keyed by its original column names.
type Record map[string]string

var billboardAliases = map[string][]string{
	"id":           {"id", "billboardid", "boardid"},
	"name":         {"billboardname", "name", "billboard"},
	"city":         {"city"},
	"district":     {"district"},
	"municipality": {"municipality"},
	"size":         {"size"},
	"level":        {"level"},
	"price":        {"price", "monthlyprice"},
	"status":       {"status"},
	"faces":        {"facescount", "faces"},
	"landmark":     {"nearestlandmark", "landmark", "location"},
	"image":        {"imageurl", "image"},
	"gps":          {"gpscoordinates", "coordinates", "gps"},
	"customer":     {"customername", "customer"},
	"start":        {"rentstartdate", "startdate"},
	"end":          {"rentenddate", "enddate", "expirydate"},
}

var recordDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006",
	"02.01.2006",
}

// BillboardFromRecord maps an inventory row into a Billboard. It accepts the
// alternate column names and casings found in exported inventory sheets.
func BillboardFromRecord(rec Record) (Billboard, error) {
	normalized := make(map[string]string, len(rec))
	for key, value := range rec {
		normalized[normalizeKey(key)] = strings.TrimSpace(value)
	}
	get := func(field string) string {
		for _, alias := range billboardAliases[field] {
			if v, ok := normalized[alias]; ok && v != "" {
				return v
			}
		}
		return ""
	}

	var b Billboard
	rawID := get("id")
	if rawID == "" {
		return b, fmt.Errorf("billboard id is missing")
	}
	id, err := strconv.ParseInt(strings.TrimSuffix(rawID, ".0"), 10, 64)
	if err != nil || id <= 0 {
		return b, fmt.Errorf("invalid billboard id %q", rawID)
	}
	b.ID = id
	b.Name = get("name")
	b.City = get("city")
	b.District = get("district")
	b.Municipality = get("municipality")
	b.Size = get("size")
	b.Level = strings.ToUpper(get("level"))
	b.Landmark = get("landmark")
	b.ImageURL = get("image")
	b.GPS = get("gps")
	b.CustomerName = get("customer")

	if raw := get("price"); raw != "" {
		price, err := parseAmount(raw)
		if err != nil {
			return b, fmt.Errorf("billboard %d: invalid price %q", id, raw)
		}
		b.MonthlyPrice = price
	}

	b.Faces = 1
	if raw := get("faces"); raw != "" {
		if faces, err := strconv.Atoi(raw); err == nil && faces > 0 {
			b.Faces = faces
		}
	}

	switch BillboardStatus(strings.ToLower(get("status"))) {
	case BillboardStatusRented:
		b.Status = BillboardStatusRented
	case BillboardStatusMaintenance:
		b.Status = BillboardStatusMaintenance
	default:
		b.Status = BillboardStatusAvailable
	}

	if raw := get("start"); raw != "" {
		b.RentStart, _ = parseRecordDate(raw)
	}
	if raw := get("end"); raw != "" {
		b.RentEnd, _ = parseRecordDate(raw)
	}
	return b, nil
}

func normalizeKey(key string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(key) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func parseAmount(raw string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)
	return strconv.ParseFloat(strings.TrimRight(cleaned, "."), 64)
}

func parseRecordDate(raw string) (time.Time, error) {
	for _, layout := range recordDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			y, m, d := parsed.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
