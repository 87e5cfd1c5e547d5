package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointsadmin/internal/models"
)

func TestVouchers(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	t.Run("bit exact line shape", func(t *testing.T) {
		vouchers := []models.Voucher{
			{Code: "0123456789012345", Password: "00112233", CreatedAt: createdAt},
		}

		got := Vouchers(vouchers)

		want := "卡号,卡密,生成时间\n" +
			`="0123456789012345","="00112233",2026-03-14 15:09:26` + "\n"
		assert.Equal(t, want, string(got), "spreadsheet-safe wrapping must be preserved byte for byte")
	})

	t.Run("empty list is just the header", func(t *testing.T) {
		got := Vouchers(nil)

		assert.Equal(t, "卡号,卡密,生成时间\n", string(got))
	})

	t.Run("one line per voucher", func(t *testing.T) {
		vouchers := []models.Voucher{
			{Code: "1111111111111111", Password: "11111111", CreatedAt: createdAt},
			{Code: "2222222222222222", Password: "22222222", CreatedAt: createdAt},
			{Code: "3333333333333333", Password: "33333333", CreatedAt: createdAt},
		}

		got := string(Vouchers(vouchers))

		assert.Equal(t, 4, strings.Count(got, "\n"), "header plus one line per card")
	})
}

func TestParseVouchers(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	t.Run("round trip", func(t *testing.T) {
		vouchers := []models.Voucher{
			{Code: "0123456789012345", Password: "00112233", CreatedAt: createdAt},
			{Code: "9876543210987654", Password: "99887766", CreatedAt: createdAt},
		}

		pairs := ParseVouchers(Vouchers(vouchers))

		require.Len(t, pairs, 2)
		assert.Equal(t, VoucherPair{Code: "0123456789012345", Password: "00112233"}, pairs[0])
		assert.Equal(t, VoucherPair{Code: "9876543210987654", Password: "99887766"}, pairs[1])
	})

	t.Run("header and malformed lines skipped", func(t *testing.T) {
		data := "卡号,卡密,生成时间\n" +
			"garbage without delimiters\n" +
			"\n" +
			`="1234123412341234","="12341234",2026-03-14 15:09:26` + "\n" +
			"a,b,c,d,e\n"

		pairs := ParseVouchers([]byte(data))

		require.Len(t, pairs, 1)
		assert.Equal(t, "1234123412341234", pairs[0].Code)
		assert.Equal(t, "12341234", pairs[0].Password)
	})
}
