package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allanpk716/evrak_generator/internal/domain"
	"github.com/allanpk716/evrak_generator/internal/report"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data", "evrak.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport(project string, started time.Time) *report.Report {
	run := domain.NewRunContext(project, "/out/"+project, "/yedek", domain.MethodMatrix)
	run.StartedAt = started
	r := report.New(run)
	r.Record(report.Outcome{
		Name:          "ACİL DURUM PLANI.docx",
		OutputPath:    "/out/" + project + "/" + project + " - ACİL DURUM PLANI.docx",
		Success:       true,
		Substitutions: 4,
		Unresolved:    []string{"[DEĞİŞTİR:İL]", "[DEĞİŞTİR:ADRES]"},
		Duration:      1500 * time.Millisecond,
	})
	r.Record(report.Outcome{Name: "Yıllık Çalışma Planı", Error: "模板未找到"})
	r.Finish()
	return r
}

func TestStore_SaveAndGetRun(t *testing.T) {
	s := newStore(t)
	r := sampleReport("ACME", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))

	require.NoError(t, s.SaveRun(r))
	require.NoError(t, s.SaveRun(r), "saving twice replaces the run")

	detail, err := s.GetRun(r.RunID.String())
	require.NoError(t, err)
	assert.Equal(t, "ACME", detail.Project)
	assert.Equal(t, "1/2", detail.Summary())
	assert.Equal(t, 4, detail.Substitutions)
	assert.True(t, detail.StartedAt.Equal(r.StartedAt))
	require.Len(t, detail.Documents, 2)
	assert.Equal(t, "ACİL DURUM PLANI.docx", detail.Documents[0].Name)
	assert.Equal(t, []string{"[DEĞİŞTİR:İL]", "[DEĞİŞTİR:ADRES]"}, detail.Documents[0].Unresolved)
	assert.Equal(t, 1500*time.Millisecond, detail.Documents[0].Duration)
	assert.False(t, detail.Documents[1].Success)
	assert.Equal(t, "模板未找到", detail.Documents[1].Error)
}

func TestStore_GetRun_NotFound(t *testing.T) {
	_, err := newStore(t).GetRun("yok")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestStore_ListRuns(t *testing.T) {
	s := newStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, project := range []string{"A", "B", "C"} {
		require.NoError(t, s.SaveRun(sampleReport(project, base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := s.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "C", runs[0].Project)
	assert.Equal(t, "B", runs[1].Project)

	all, err := s.ListRuns(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_RecentSGK(t *testing.T) {
	s := newStore(t)

	codes, err := s.RecentSGK()
	require.NoError(t, err)
	assert.Empty(t, codes)

	for _, code := range []string{"1111111", "2222222", "3333333", "1111111", "4444444"} {
		require.NoError(t, s.RememberSGK(code))
	}

	codes, err = s.RecentSGK()
	require.NoError(t, err)
	assert.Equal(t, []string{"4444444", "1111111", "3333333"}, codes)
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evrak.db")
	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.RememberSGK("1234567"))
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()
	codes, err := s.RecentSGK()
	require.NoError(t, err)
	assert.Equal(t, []string{"1234567"}, codes)
}
