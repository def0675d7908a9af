package company

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allanpk716/evrak_generator/internal/domain"
	"github.com/allanpk716/evrak_generator/internal/testutil"
)

type workplace struct {
	sgk, province, title, project, nace, registry, hazard, staff, expert, physician, address string
}

func (w workplace) row() []interface{} {
	row := make([]interface{}, ColAddress+1)
	for i := range row {
		row[i] = ""
	}
	row[ColProvince] = w.province
	row[ColCompanyTitle] = w.title
	row[ColProjectName] = w.project
	row[ColNaceCode] = w.nace
	row[ColSGKRegistry] = w.registry
	row[ColShortSGK] = w.sgk
	row[ColHazardClass] = w.hazard
	row[ColStaffCount] = w.staff
	row[ColExpert] = w.expert
	row[ColPhysician] = w.physician
	row[ColAddress] = w.address
	return row
}

func writeDirectory(t *testing.T, sgkHeader string, rows ...workplace) (string, string) {
	t.Helper()
	dir := t.TempDir()

	header := make([]interface{}, ColAddress+1)
	for i := range header {
		header[i] = ""
	}
	header[0] = "SIRA"
	header[ColShortSGK] = sgkHeader
	data := [][]interface{}{header}
	for _, w := range rows {
		data = append(data, w.row())
	}
	workplaces := testutil.WriteRows(t, filepath.Join(dir, "ANKARA İŞYERI TABLOSU.xlsx"), data)

	nace := testutil.WriteRows(t, filepath.Join(dir, "Nace Kod Listesi.xlsx"), [][]interface{}{
		{"KOD", "AÇIKLAMA"},
		{"41.20.01", "İkamet amaçlı binaların inşaatı"},
		{"86.10.01", "Hastane hizmetleri"},
	})
	return workplaces, nace
}

var acme = workplace{
	sgk: "1234567", province: "ANKARA", title: "ACME İNŞAAT A.Ş.", project: "ÇANKAYA ŞANTİYESİ",
	nace: "41.20.01", registry: "2.4120.01.01.1234567.006.01-23", hazard: "ÇOK TEHLİKELİ",
	staff: "75", expert: "Ayşe Yılmaz", physician: "Dr. Mehmet Kaya", address: "Çankaya/ANKARA",
}

func TestValidateSGKCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"1234567", true},
		{" 1234567 ", true},
		{"123456", false},
		{"12345678", false},
		{"12a4567", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := ValidateSGKCode(tt.code)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidSGKCode))
			}
		})
	}
}

func TestDirectory_Lookup(t *testing.T) {
	other := acme
	other.sgk = "7654321"
	other.title = "BAŞKA LTD."
	workplaces, nace := writeDirectory(t, ShortSGKHeader, other, acme)

	d, err := LoadDirectory(workplaces, nace, nil)
	require.NoError(t, err)

	rec, err := d.Lookup("1234567")
	require.NoError(t, err)
	assert.Equal(t, "ACME İNŞAAT A.Ş.", rec.CompanyTitle)
	assert.Equal(t, "ÇANKAYA ŞANTİYESİ", rec.ProjectName)
	assert.Equal(t, "ÇOK TEHLİKELİ", rec.HazardClass)
	assert.Equal(t, "75", rec.StaffCount)
	assert.Equal(t, "Çankaya/ANKARA", rec.Address)
	assert.Equal(t, "İkamet amaçlı binaların inşaatı", d.NaceDescription(rec.NaceCode))

	_, err = d.Lookup("1111111")
	assert.True(t, errors.Is(err, ErrCompanyNotFound))
	_, err = d.Lookup("12")
	assert.True(t, errors.Is(err, ErrInvalidSGKCode))
}

func TestDirectory_PositionalSGKColumn(t *testing.T) {
	workplaces, _ := writeDirectory(t, "SGK KISA KOD", acme)

	d, err := LoadDirectory(workplaces, "", nil)
	require.NoError(t, err)
	rec, err := d.Lookup("1234567")
	require.NoError(t, err)
	assert.Equal(t, "ANKARA", rec.Province)
	assert.Empty(t, d.NaceDescription(rec.NaceCode))
}

func TestDirectory_MissingNaceTable(t *testing.T) {
	workplaces, _ := writeDirectory(t, ShortSGKHeader, acme)
	d, err := LoadDirectory(workplaces, filepath.Join(t.TempDir(), "yok.xlsx"), nil)
	require.NoError(t, err, "NACE table is optional")
	assert.Empty(t, d.NaceDescription("41.20.01"))
}

func TestForm_GetValues(t *testing.T) {
	base := domain.ReplacementMap{
		TokenRiskTeamTraining:    "15.03.2024",
		TokenEmergencyTeam:       "29.02.2024",
		domain.TokenActivityDate: "01.01.2024",
		domain.TokenYearlyDate:   "02.01.2024",
	}
	form := NewForm(base, domain.MethodFineKinney, nil)
	form.Apply(Record{
		CompanyTitle: acme.title,
		ProjectName:  acme.project,
		NaceCode:     acme.nace,
		HazardClass:  acme.hazard,
		StaffCount:   acme.staff,
	}, "İkamet amaçlı binaların inşaatı")

	values := form.GetValues()
	assert.Equal(t, "ACME İNŞAAT A.Ş. - ÇANKAYA ŞANTİYESİ", values[domain.TokenCompanyProject])
	assert.Equal(t, "41.20.01 - İkamet amaçlı binaların inşaatı", values[TokenNaceWithActivity])
	assert.Equal(t, "15.03.2026", values[TokenRiskValidity])
	assert.Equal(t, "28.02.2026", values[TokenEmergencyValid])
	assert.Equal(t, "8 SAAT", values[TokenExpertHours])
	assert.Equal(t, "8 SAAT", values[TokenPhysicianHours])
	assert.Equal(t, "2 Yılda 1", values[TokenRiskPeriod])
	assert.Equal(t, "Yılda 1", values[TokenExamPeriod])
	assert.Equal(t, "Fine Kinney", values[domain.TokenRiskMethod])
	assert.Equal(t, "", values[domain.TokenActivityDate])
	assert.Equal(t, "02.01.2024", values[domain.TokenYearlyDate], "unrelated keys are kept")

	assert.Equal(t, "01.01.2024", base[domain.TokenActivityDate], "base map is not modified")
}

func TestForm_OutsideGroup(t *testing.T) {
	form := NewForm(domain.ReplacementMap{}, "", nil)
	form.Apply(Record{CompanyTitle: "Grup Dışı Firmalar", ProjectName: "YILDIZ MARKET"}, "")

	values := form.GetValues()
	assert.Equal(t, "YILDIZ MARKET", values[domain.TokenCompanyTitle])
	assert.Equal(t, "YILDIZ MARKET", values[TokenCompanyTitleBig])
	assert.Equal(t, "", values[domain.TokenProjectName])
	assert.Equal(t, "", values[TokenProjectNameBig])
	assert.Equal(t, "YILDIZ MARKET", values[domain.TokenCompanyProject])
	assert.Equal(t, "Matris", values[domain.TokenRiskMethod])
}

func TestHazardClass(t *testing.T) {
	tests := []struct {
		value     string
		class     HazardClass
		years     int
		expert    string
		physician string
		risk      string
	}{
		{"AZ TEHLİKELİ", HazardLow, 6, "4 SAAT", "4 SAAT", "6 Yılda 1"},
		{"tehlikeli", HazardMedium, 4, "8 SAAT", "4 SAAT", "4 Yılda 1"},
		{"Çok  Tehlikeli", HazardHigh, 2, "8 SAAT", "8 SAAT", "2 Yılda 1"},
		{"", HazardUnknown, 0, "8 SAAT", "8 SAAT", ""},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			h := ParseHazardClass(tt.value)
			assert.Equal(t, tt.class, h)
			assert.Equal(t, tt.years, h.ValidityYears())
			expert, physician := h.Hours()
			assert.Equal(t, tt.expert, expert)
			assert.Equal(t, tt.physician, physician)
			risk, _ := h.Periods()
			assert.Equal(t, tt.risk, risk)
		})
	}
}

func TestAddYears(t *testing.T) {
	leap := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2028, time.February, 29, 0, 0, 0, 0, time.UTC), AddYears(leap, 4))
	assert.Equal(t, time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC), AddYears(leap, 2))
	assert.Equal(t, leap, AddYears(leap, 0))
}
