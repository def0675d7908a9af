package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/allanpk716/evrak_generator/internal/domain"
)

func newReport() *Report {
	r := New(domain.NewRunContext("ACME", "/tmp/ACME", "/tmp/yedek", domain.MethodMatrix))
	r.Record(Outcome{
		Name:          "ACİL DURUM PLANI.docx",
		Success:       true,
		Substitutions: 5,
		Stats:         map[string]int{"[DEĞİŞTİR:PROJEADI]": 3, "[DEĞİŞTİR:İL]": 2},
	})
	r.Record(Outcome{
		Name:          "Yıllık Eğitim Planı",
		Success:       true,
		Substitutions: 1,
		Stats:         map[string]int{"[DEĞİŞTİR:PROJEADI]": 1},
		Unresolved:    []string{"[DEĞİŞTİR:UZMANADI]"},
	})
	r.Record(Outcome{Name: "Yıllık Çalışma Planı", Error: "模板未找到"})
	return r
}

func TestReport_Counts(t *testing.T) {
	r := newReport()

	assert.Equal(t, 3, r.Total())
	assert.Equal(t, 2, r.Succeeded())
	assert.Equal(t, "2/3", r.Summary())
	assert.Equal(t, 6, r.Substitutions())
	assert.Len(t, r.Failed(), 1)
	assert.Equal(t, "Yıllık Çalışma Planı", r.Failed()[0].Name)
	assert.Equal(t, "ACME", r.Project)
	assert.False(t, r.StartedAt.IsZero())
}

func TestReport_Keywords(t *testing.T) {
	keywords := newReport().Keywords()

	assert.Equal(t, []KeywordUsage{
		{Keyword: "[DEĞİŞTİR:PROJEADI]", ReplaceCount: 4, Documents: 2},
		{Keyword: "[DEĞİŞTİR:İL]", ReplaceCount: 2, Documents: 1},
	}, keywords)
}

func TestReport_Empty(t *testing.T) {
	r := New(nil)
	assert.Equal(t, "0/0", r.Summary())
	assert.Empty(t, r.Keywords())
	assert.Empty(t, r.Unresolved())
}

func TestRender(t *testing.T) {
	r := newReport()
	r.Fail(nil)
	out := Render(r)

	assert.Contains(t, out, "2/3")
	assert.Contains(t, out, "ACİL DURUM PLANI.docx")
	assert.Contains(t, out, "模板未找到")
	assert.Contains(t, out, "[DEĞİŞTİR:UZMANADI]")
	assert.True(t, strings.Contains(out, "✗"))
}
