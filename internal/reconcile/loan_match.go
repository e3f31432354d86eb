package reconcile

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/haolinpeng/claimflow/internal/domain/entity"
)

// Scoring weights and the inclusion threshold. Approval-number matching is
// the dominant signal; amount and keyword similarity only supplement it.
const (
	amountWeight   = 0.5
	keywordWeight  = 0.3
	scoreThreshold = 20.0
)

// MatchLoans scores existing loan records against a new claim and returns
// a ranked recommendation list, sorted by descending score. Only loans
// scoring above the threshold or carrying at least one recorded reason are
// included; a loan with zero signals is excluded entirely. Callers must
// pre-filter paid and cancelled loans out of the candidate set.
//
// Each match carries human-readable reasons explaining why it was
// suggested; the engine returns explanations, not just a score.
func MatchLoans(loans []entity.LoanRecord, approval *entity.ApprovalInfo, invoiceAmount float64, invoiceContent []string) []entity.MatchedLoan {
	var approvalNumber, eventSummary, eventDetail string
	if approval != nil {
		approvalNumber = approval.ApprovalNumber
		eventSummary = approval.EventSummary
		eventDetail = approval.EventDetail
	}

	claimTexts := append([]string{eventSummary, eventDetail}, invoiceContent...)
	claimKeywords := ExtractKeywords(claimTexts...)

	var matched []entity.MatchedLoan
	for _, loan := range loans {
		var (
			score     float64
			reasons   []string
			matchType entity.MatchType
		)

		switch approvalNumberScore(approvalNumber, loan.ApprovalNumber) {
		case 100:
			score += 100
			reasons = append(reasons, "审批单号完全匹配")
			matchType = entity.MatchTypeExact
		case 60:
			score += 60
			reasons = append(reasons, "审批单号部分匹配")
			matchType = entity.MatchTypeFuzzy
		case 40:
			score += 40
			reasons = append(reasons, "审批单号后缀匹配")
			matchType = entity.MatchTypeFuzzy
		}

		if amt := AmountScore(invoiceAmount, loan.Amount); amt > 0 {
			score += amt * amountWeight
			reasons = append(reasons, fmt.Sprintf("金额匹配 (¥%.2f)", loan.Amount))
			if matchType == "" {
				matchType = entity.MatchTypeAmount
			}
		}

		if kw := keywordScore(claimKeywords, ExtractKeywords(loan.Reason)); kw > 0 {
			score += kw * keywordWeight
			reasons = append(reasons, "借款事由相关")
			if matchType == "" {
				matchType = entity.MatchTypeKeyword
			}
		}

		if score > scoreThreshold || len(reasons) > 0 {
			matched = append(matched, entity.MatchedLoan{
				LoanRecord:   loan,
				MatchScore:   math.Min(score, 100),
				MatchReasons: reasons,
				MatchType:    matchType,
			})
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].MatchScore > matched[j].MatchScore
	})
	return matched
}

// normalizeApprovalNumber lower-cases a serial and strips whitespace,
// hyphens and underscores, so reformatted copies of the same number
// compare equal.
func normalizeApprovalNumber(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsSpace(r), r == '-', r == '_':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// approvalNumberScore compares two approval numbers after normalization.
// Exact match scores 100, substring containment in either direction 60,
// and a shared 10-character suffix 40 (covers truncated or reformatted
// serials). At most one bonus applies; they are tested in that priority
// order and the highest wins.
func approvalNumberScore(a, b string) float64 {
	na, nb := normalizeApprovalNumber(a), normalizeApprovalNumber(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 100
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 60
	}
	if suffix(na, 10) == suffix(nb, 10) {
		return 40
	}
	return 0
}

func suffix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// AmountScore rates the similarity of two amounts on a 0-100 scale using a
// two-tier band over the relative difference |a-b|/max(a,b): exact match
// scores 100, differences within 10% scale linearly from 100 down to 0,
// differences between 10% and 20% occupy a lower band topping out at 50,
// and anything beyond 20% scores 0. Near-exact amounts are strong evidence
// while merely similar amounts are weak evidence that must not dominate.
// The score is symmetric in its arguments.
func AmountScore(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	diff := math.Abs(a - b)
	if diff == 0 {
		return 100
	}
	ratio := diff / math.Max(a, b)
	switch {
	case ratio <= 0.10:
		return 100 * (1 - ratio/0.10)
	case ratio <= 0.20:
		return 50 * (1 - (ratio-0.10)/0.10)
	default:
		return 0
	}
}

// ExtractKeywords tokenizes free text into a comparable keyword set:
// whitespace-separated English/numeric words of at least 2 characters,
// lower-cased, plus all contiguous-CJK substrings of length 2 and 3.
// The n-gram expansion lets short Chinese phrases match across different
// phrasings of the same event.
func ExtractKeywords(texts ...string) []string {
	seen := make(map[string]bool)
	var keywords []string
	add := func(kw string) {
		if kw == "" || seen[kw] {
			return
		}
		seen[kw] = true
		keywords = append(keywords, kw)
	}

	for _, text := range texts {
		var latin, cjk []rune
		flushLatin := func() {
			if len(latin) >= 2 {
				add(strings.ToLower(string(latin)))
			}
			latin = latin[:0]
		}
		flushCJK := func() {
			for n := 2; n <= 3; n++ {
				for i := 0; i+n <= len(cjk); i++ {
					add(string(cjk[i : i+n]))
				}
			}
			cjk = cjk[:0]
		}

		for _, r := range text {
			switch {
			case unicode.Is(unicode.Han, r):
				flushLatin()
				cjk = append(cjk, r)
			case unicode.IsLetter(r) || unicode.IsDigit(r):
				flushCJK()
				latin = append(latin, r)
			default:
				flushLatin()
				flushCJK()
			}
		}
		flushLatin()
		flushCJK()
	}
	return keywords
}

// keywordScore rates the overlap of two keyword sets: the number of
// bidirectional-substring matches over the size of the smaller set, scaled
// to 0-100 and capped at 100.
func keywordScore(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var matches int
	for _, ka := range a {
		for _, kb := range b {
			if strings.Contains(ka, kb) || strings.Contains(kb, ka) {
				matches++
				break
			}
		}
	}
	if matches == 0 {
		return 0
	}
	score := float64(matches) / float64(min(len(a), len(b))) * 100
	return math.Min(score, 100)
}
