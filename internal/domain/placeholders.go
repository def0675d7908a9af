package domain

// 模板中使用的占位符
const (
	TokenProjectName    = "[DEĞİŞTİR:PROJEADI]"
	TokenCompanyTitle   = "[DEĞİŞTİR:ŞİRKET UNVANI]"
	TokenCompanyProject = "[DEĞİŞTİR:ŞİRKETPROJE]"
	TokenStaffCount     = "[DEĞİŞTİR:ÇALIŞANSAYISI]"
	TokenYearlyDate     = "[DEĞİŞTİR:YILLIK:TARİH]"
	TokenYearlyYear     = "[DEĞİŞTİR:YILLIK:YIL]"
	TokenRiskMethod     = "[DEĞİŞTİR:RDYONTEMI]"
	TokenActivityDate   = "[DEĞİŞTİR:FAALİYETTARİH]"
	TokenSGKRegistry    = "[DEĞİŞTİR:SGKSİCİL]"
	TokenHazardClass    = "[DEĞİŞTİR:TEHLİKESINIFI]"
	TokenNaceCode       = "[DEĞİŞTİR:NACE]"
	TokenReportDate     = "[DEĞİŞTİR:YDR:TARİH]"
	TokenReportYear     = "[DEĞİŞTİR:YDR:YIL]"
	TokenPhone          = "[DEĞİŞTİR:TELEFON]"
	TokenMail           = "[DEĞİŞTİR:MAİL]"
)

// DefaultProjectName 无法得出项目名时使用
const DefaultProjectName = "PROJE"

// DateLayout 日期格式 dd.mm.yyyy
const DateLayout = "02.01.2006"
