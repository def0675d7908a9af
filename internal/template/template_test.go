package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allanpk716/evrak_generator/internal/domain"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
}

func TestResolver_Resolve(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "YILLIKLAR")
	touch(t, dir,
		"YILLIK EĞİTİM PLANI KURULLU.xlsx",
		"YILLIK EĞİTİM PLANI KURULSUZ.xlsx",
		"YILLIK DEĞERLENDİRME RAPORU.xlsx",
	)
	resolver := NewResolver(dir, "", nil)

	tests := []struct {
		name     string
		variant  domain.PlanVariant
		expected string
	}{
		{"staff 75 with council", domain.NewPlanVariant(domain.PlanTraining, 75, 50), "YILLIK EĞİTİM PLANI KURULLU.xlsx"},
		{"staff 10 without council", domain.NewPlanVariant(domain.PlanTraining, 10, 50), "YILLIK EĞİTİM PLANI KURULSUZ.xlsx"},
		{"threshold is inclusive", domain.NewPlanVariant(domain.PlanTraining, 50, 50), "YILLIK EĞİTİM PLANI KURULLU.xlsx"},
		{"evaluation report", domain.NewPlanVariant(domain.PlanEvaluation, 10, 50), "YILLIK DEĞERLENDİRME RAPORU.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, ok := resolver.Resolve(tt.variant.Family.LogicalName(), tt.variant)
			require.True(t, ok)
			assert.Equal(t, tt.expected, filepath.Base(desc.Path))
			assert.Equal(t, domain.FormatSpreadsheet, desc.Format)
			assert.Equal(t, tt.variant.Family.LogicalName(), desc.LogicalName)
		})
	}

	_, ok := resolver.Resolve(domain.LogicalWorkPlan, domain.NewPlanVariant(domain.PlanWork, 10, 50))
	assert.False(t, ok, "missing template is reported, not raised")
}

func TestResolver_LooseNameVariants(t *testing.T) {
	variants := []string{
		"yillik egitim plani kurullu.xlsx",
		"YILLIK EGITIM PLANI KURULLU.xlsx",
		"Yıllık Eğitim Planı Kurullu.xlsx",
	}
	variant := domain.NewPlanVariant(domain.PlanTraining, 75, 50)

	for _, fileName := range variants {
		t.Run(fileName, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, "~$"+fileName, "YILLIK EĞİTİM PLANI KURULSUZ.xlsx", fileName)

			desc, ok := NewResolver(dir, "", nil).Resolve(domain.LogicalTrainingPlan, variant)
			require.True(t, ok)
			assert.Equal(t, filepath.Join(dir, fileName), desc.Path)
		})
	}
}

func TestResolver_WorkDirFallback(t *testing.T) {
	work := t.TempDir()
	touch(t, filepath.Join(work, "Evraklar", "YILLIKLAR"), "YILLIK ÇALIŞMA PLANI KURULSUZ.xlsx")

	resolver := NewResolver(filepath.Join("Evraklar", "YILLIKLAR"), work, nil)
	desc, ok := resolver.Resolve(domain.LogicalWorkPlan, domain.NewPlanVariant(domain.PlanWork, 3, 50))
	require.True(t, ok)
	assert.Equal(t, filepath.Join(work, "Evraklar", "YILLIKLAR", "YILLIK ÇALIŞMA PLANI KURULSUZ.xlsx"), desc.Path)
}

func TestResolver_Locate(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "İSG KURUL KARARI.docx")

	desc, ok := NewResolver(dir, "", nil).Locate("İSG KURUL KARARI.docx", "ISG KURUL KARARI.docx")
	require.True(t, ok)
	assert.Equal(t, domain.FormatWord, desc.Format)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		family   domain.PlanFamily
		expected bool
	}{
		{"Yıllık Eğitim Planı", domain.PlanTraining, true},
		{"YILLIK CALISMA PLANI", domain.PlanWork, true},
		{"Yıllık Değerlendirme Raporu", domain.PlanEvaluation, true},
		{"Yıllık Eğitim Planı Katılım Formu.docx", 0, false},
		{"ACİL DURUM PLANI.docx", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			family, ok := Classify(tt.name)
			assert.Equal(t, tt.expected, ok)
			assert.Equal(t, tt.family, family)
		})
	}
}

func TestExcludedByMethod(t *testing.T) {
	tests := []struct {
		file     string
		method   domain.RiskMethod
		expected bool
	}{
		{"RİSK DEĞERLENDİRME FINE KINNEY.xlsx", domain.MethodMatrix, true},
		{"Risk_Fine_Kinney.xlsx", domain.MethodMatrix, true},
		{"RİSK DEĞERLENDİRME MATRİS.xlsx", domain.MethodMatrix, false},
		{"RİSK DEĞERLENDİRME MATRİS.xlsx", domain.MethodFineKinney, true},
		{"MATRİS AÇIKLAMA.docx", domain.MethodFineKinney, false},
		{"RİSK DEĞERLENDİRME FINE KINNEY.xlsx", domain.MethodFineKinney, false},
		{"RİSK DEĞERLENDİRME MATRİS.xlsx", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.file+"/"+string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.expected, ExcludedByMethod(tt.file, tt.method))
		})
	}
}

func TestCatalog_List(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "Evraklar")
	yearly := filepath.Join(docs, "YILLIKLAR")
	touch(t, docs,
		"ACİL DURUM PLANI.docx",
		"RİSK DEĞERLENDİRME MATRİS.xlsx",
		"RİSK DEĞERLENDİRME FINE KINNEY.xlsx",
		"YILLIK EĞİTİM PLANI ESKİ.xlsx",
		"~$ACİL DURUM PLANI.docx",
		"notlar.txt",
	)
	touch(t, yearly,
		"YILLIK EĞİTİM PLANI KURULLU.xlsx",
		"YILLIK EĞİTİM PLANI KURULSUZ.xlsx",
		"YILLIK DEĞERLENDİRME RAPORU.xlsx",
	)
	catalog := NewCatalog(docs, yearly, nil)

	matrix, err := catalog.List(domain.MethodMatrix)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ACİL DURUM PLANI.docx",
		"RİSK DEĞERLENDİRME MATRİS.xlsx",
		"Yıllık Değerlendirme Raporu",
		"Yıllık Eğitim Planı",
	}, matrix)

	fineKinney, err := catalog.List(domain.MethodFineKinney)
	require.NoError(t, err)
	assert.Contains(t, fineKinney, "RİSK DEĞERLENDİRME FINE KINNEY.xlsx")
	assert.NotContains(t, fineKinney, "RİSK DEĞERLENDİRME MATRİS.xlsx")
	assert.NotContains(t, fineKinney, "Yıllık Çalışma Planı")
}

func TestCatalog_MissingDir(t *testing.T) {
	docs, err := NewCatalog(filepath.Join(t.TempDir(), "yok"), "", nil).List(domain.MethodMatrix)
	assert.NoError(t, err)
	assert.Empty(t, docs)
}
