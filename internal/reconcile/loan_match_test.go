package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haolinpeng/claimflow/internal/domain/entity"
)

func TestApprovalNumberNormalizedExactMatch(t *testing.T) {
	loans := []entity.LoanRecord{
		{ID: "1", Amount: 5000, ApprovalNumber: "dd20240091", Status: entity.LoanStatusSubmitted},
	}
	approval := &entity.ApprovalInfo{ApprovalNumber: "DD-2024-0091"}

	matched := MatchLoans(loans, approval, 0, nil)

	require.Len(t, matched, 1)
	assert.Equal(t, 100.0, matched[0].MatchScore)
	assert.Equal(t, entity.MatchTypeExact, matched[0].MatchType)
	assert.Contains(t, matched[0].MatchReasons, "审批单号完全匹配")
}

func TestApprovalNumberScoreTiers(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{name: "exact after normalization", a: "DD-2024-0091", b: "dd 2024_0091", expected: 100},
		{name: "substring either direction", a: "BX2024-00123", b: "00123", expected: 60},
		{name: "last-10 suffix", a: "HQ-2024-000777", b: "BJ2024000777", expected: 40},
		{name: "unrelated", a: "DD-2024-0091", b: "XX-1999-5555", expected: 0},
		{name: "either side empty", a: "", b: "DD-2024-0091", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, approvalNumberScore(tt.a, tt.b))
		})
	}
}

func TestAmountScoreBands(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float64
		expected float64
	}{
		{name: "exact", a: 1000, b: 1000, expected: 100},
		{name: "5 percent off mid first band", a: 1000, b: 950, expected: 50},
		{name: "10 percent boundary", a: 1000, b: 900, expected: 0},
		{name: "15 percent mid second band", a: 1000, b: 850, expected: 25},
		{name: "beyond 20 percent", a: 1000, b: 700, expected: 0},
		{name: "zero amount excluded", a: 0, b: 1000, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, AmountScore(tt.a, tt.b), 0.001)
		})
	}
}

func TestAmountScoreSymmetry(t *testing.T) {
	pairs := [][2]float64{
		{1000, 950}, {850, 1000}, {1, 2}, {123.45, 123.45}, {5000, 4000},
	}
	for _, p := range pairs {
		assert.InDelta(t, AmountScore(p[0], p[1]), AmountScore(p[1], p[0]), 0.0001)
	}
}

func TestExtractKeywords(t *testing.T) {
	keywords := ExtractKeywords("上海出差 hotel booking 2024")

	assert.Contains(t, keywords, "hotel")
	assert.Contains(t, keywords, "booking")
	assert.Contains(t, keywords, "2024")
	assert.Contains(t, keywords, "上海", "CJK 2-grams")
	assert.Contains(t, keywords, "出差")
	assert.Contains(t, keywords, "海出")
	assert.Contains(t, keywords, "上海出", "CJK 3-grams")
	assert.NotContains(t, keywords, "a", "single characters are dropped")
}

func TestKeywordMatchContributes(t *testing.T) {
	loans := []entity.LoanRecord{
		{ID: "1", Amount: 3000, Reason: "上海出差备用金", Status: entity.LoanStatusSubmitted},
	}
	approval := &entity.ApprovalInfo{EventSummary: "上海出差报销"}

	matched := MatchLoans(loans, approval, 0, nil)

	require.Len(t, matched, 1)
	assert.Equal(t, entity.MatchTypeKeyword, matched[0].MatchType)
	assert.Contains(t, matched[0].MatchReasons, "借款事由相关")
	assert.Greater(t, matched[0].MatchScore, 0.0)
}

func TestMatchLoansExcludesZeroSignalLoans(t *testing.T) {
	loans := []entity.LoanRecord{
		{ID: "1", Amount: 99999, Reason: "零件采购", ApprovalNumber: "ZZ-0001", Status: entity.LoanStatusSubmitted},
	}
	approval := &entity.ApprovalInfo{ApprovalNumber: "DD-2024-0091", EventSummary: "团队建设"}

	matched := MatchLoans(loans, approval, 1000, nil)

	assert.Empty(t, matched, "a loan with zero signals is excluded, not scored at 0")
}

func TestMatchLoansRankedByScore(t *testing.T) {
	loans := []entity.LoanRecord{
		{ID: "amount-only", Amount: 1000, Status: entity.LoanStatusSubmitted},
		{ID: "exact", Amount: 1000, ApprovalNumber: "DD-2024-0091", Status: entity.LoanStatusSubmitted},
		{ID: "keyword-only", Amount: 70000, Reason: "上海出差", Status: entity.LoanStatusSubmitted},
	}
	approval := &entity.ApprovalInfo{ApprovalNumber: "DD20240091", EventSummary: "上海出差"}

	matched := MatchLoans(loans, approval, 1000, nil)

	require.Len(t, matched, 3)
	assert.Equal(t, "exact", matched[0].ID)
	for i := 1; i < len(matched); i++ {
		assert.GreaterOrEqual(t, matched[i-1].MatchScore, matched[i].MatchScore)
	}
}

func TestMatchLoansScoreCappedAt100(t *testing.T) {
	loans := []entity.LoanRecord{
		{ID: "1", Amount: 1000, ApprovalNumber: "DD-2024-0091", Reason: "上海出差", Status: entity.LoanStatusSubmitted},
	}
	approval := &entity.ApprovalInfo{ApprovalNumber: "DD-2024-0091", EventSummary: "上海出差"}

	matched := MatchLoans(loans, approval, 1000, nil)

	require.Len(t, matched, 1)
	assert.LessOrEqual(t, matched[0].MatchScore, 100.0)
	assert.Len(t, matched[0].MatchReasons, 3, "every contributing signal is explained")
}

func TestMatchLoansInvoiceContentKeywords(t *testing.T) {
	loans := []entity.LoanRecord{
		{ID: "1", Amount: 50, Reason: "会议费借款", Status: entity.LoanStatusSubmitted},
	}

	matched := MatchLoans(loans, nil, 0, []string{"会议费"})

	require.Len(t, matched, 1)
	assert.Contains(t, matched[0].MatchReasons, "借款事由相关")
}

func TestMatchLoansEmptyInputs(t *testing.T) {
	assert.Empty(t, MatchLoans(nil, nil, 0, nil))
	assert.Empty(t, MatchLoans([]entity.LoanRecord{{ID: "1", Status: entity.LoanStatusSubmitted}}, nil, 0, nil))
}

func TestLoanStatusEligibility(t *testing.T) {
	assert.True(t, entity.LoanStatusDraft.Eligible())
	assert.True(t, entity.LoanStatusSubmitted.Eligible())
	assert.False(t, entity.LoanStatusPaid.Eligible())
	assert.False(t, entity.LoanStatusCancelled.Eligible())
}
