package voucher

import (
	"math"
	"strings"
)

var (
	cnDigits     = [...]string{"零", "壹", "贰", "叁", "肆", "伍", "陆", "柒", "捌", "玖"}
	cnUnits      = [...]string{"仟", "佰", "拾", ""}
	cnGroupUnits = [...]string{"", "万", "亿", "兆"}
)

// amountToChinese renders an amount in the uppercase Chinese form used on
// printed expense forms, e.g. 1700 -> 壹仟柒佰元整.
func amountToChinese(amount float64) string {
	cents := int64(math.Round(amount * 100))
	if cents == 0 {
		return "零元整"
	}

	yuan := cents / 100
	jiao := cents / 10 % 10
	fen := cents % 10

	var b strings.Builder
	if yuan == 0 {
		b.WriteString(cnDigits[0])
	} else {
		b.WriteString(integerToChinese(yuan))
	}
	b.WriteString("元")

	if jiao == 0 && fen == 0 {
		b.WriteString("整")
		return b.String()
	}
	if jiao != 0 {
		b.WriteString(cnDigits[jiao] + "角")
	}
	if fen != 0 {
		if jiao == 0 && yuan > 0 {
			b.WriteString(cnDigits[0])
		}
		b.WriteString(cnDigits[fen] + "分")
	}
	return b.String()
}

// integerToChinese converts a positive integer, grouping by ten-thousands.
func integerToChinese(n int64) string {
	result := ""
	for gi := 0; n > 0 && gi < len(cnGroupUnits); gi++ {
		group := int(n % 10000)
		n /= 10000
		switch {
		case group == 0:
			if result != "" && !strings.HasPrefix(result, cnDigits[0]) {
				result = cnDigits[0] + result
			}
		default:
			gs := groupToChinese(group)
			if n > 0 && group < 1000 {
				gs = cnDigits[0] + gs
			}
			result = gs + cnGroupUnits[gi] + result
		}
	}
	return result
}

// groupToChinese converts a value in [1, 9999], collapsing runs of interior
// zeros to a single 零.
func groupToChinese(group int) string {
	out := ""
	zeroPending := false
	for i, unit := range [...]int{1000, 100, 10, 1} {
		d := group / unit % 10
		if d == 0 {
			if out != "" {
				zeroPending = true
			}
			continue
		}
		if zeroPending {
			out += cnDigits[0]
			zeroPending = false
		}
		out += cnDigits[d] + cnUnits[i]
	}
	return out
}
