// Package export implements the two flat text exchange formats the admin
// back-office speaks: the voucher CSV download and the '$'-delimited
// settings file lines.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"pointsadmin/internal/models"
)

// Header line of the voucher download, localized for the admin UI
const voucherHeader = "卡号,卡密,生成时间"

const voucherTimeLayout = "2006-01-02 15:04:05"

// Vouchers renders one line per card. Code and password are wrapped in the
// historical ="..." form so spreadsheet tools keep them as text: with the
// digits-only rule both are pure digit strings and a naive cell would lose
// leading zeros or precision. The exact byte shape is load-bearing, existing
// downstream imports depend on it.
func Vouchers(vouchers []models.Voucher) []byte {
	var buf bytes.Buffer

	buf.WriteString(voucherHeader)
	buf.WriteByte('\n')

	for _, v := range vouchers {
		fmt.Fprintf(&buf, "=\"%s\",\"=\"%s\",%s\n", v.Code, v.Password, v.CreatedAt.Format(voucherTimeLayout))
	}

	return buf.Bytes()
}

// VoucherPair is what survives a round trip through the download format
type VoucherPair struct {
	Code     string
	Password string
}

// ParseVouchers reads the download format back. Lines that do not look like
// card lines (the header included) are skipped rather than failing the
// whole import.
func ParseVouchers(data []byte) []VoucherPair {
	var pairs []VoucherPair

	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			continue
		}

		code := unwrap(fields[0])
		password := unwrap(fields[1])
		if code == "" || password == "" {
			continue
		}

		pairs = append(pairs, VoucherPair{Code: code, Password: password})
	}

	return pairs
}

// unwrap strips the ="..." text-forcing decoration around a field. Codes
// and passwords are alphanumeric so trimming quote and equals characters
// from the edges cannot eat payload.
func unwrap(field string) string {
	trimmed := strings.Trim(field, `="`)
	if trimmed == field {
		// Not a wrapped field, reject it (the header lands here)
		return ""
	}
	return trimmed
}
