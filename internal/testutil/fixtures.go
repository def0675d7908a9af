// Package testutil 测试用的文档夹具
package testutil

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const (
	contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/header1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>
</Types>`
	packageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`
	documentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header1.xml"/>
</Relationships>`
)

// DocumentXML 把段落 XML 包装成完整的 word/document.xml
func DocumentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`
}

// HeaderXML 把段落 XML 包装成 word/header1.xml
func HeaderXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` + body + `</w:hdr>`
}

// FooterXML 把段落 XML 包装成页脚部件
func FooterXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:ftr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` + body + `</w:ftr>`
}

// WriteDocx 写入一个最小的 .docx，header 为空时不生成页眉
func WriteDocx(t *testing.T, path, body, header string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	zw := zip.NewWriter(file)
	parts := []struct{ name, content string }{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", packageRels},
		{"word/_rels/document.xml.rels", documentRels},
		{"word/document.xml", DocumentXML(body)},
	}
	if header != "" {
		parts = append(parts, struct{ name, content string }{"word/header1.xml", HeaderXML(header)})
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(p.content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

// AddDocxPart 向已有的 .docx 追加一个部件
func AddDocxPart(t *testing.T, path, part, content string) {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)

	type entry struct{ name, content string }
	var entries []entry
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		entries = append(entries, entry{f.Name, string(data)})
	}
	require.NoError(t, zr.Close())
	entries = append(entries, entry{part, content})

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	zw := zip.NewWriter(file)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

// ReadDocxPart 读取 .docx 中的某个部件
func ReadDocxPart(t *testing.T, path, part string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != part {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		buf := make([]byte, f.UncompressedSize64)
		_, err = io.ReadFull(rc, buf)
		require.NoError(t, err)
		return string(buf)
	}
	t.Fatalf("part %s not found in %s", part, path)
	return ""
}

// Cells 单元格坐标到值
type Cells map[string]interface{}

// WriteWorkbook 按工作表写入单元格，第一个工作表替换默认的 Sheet1
func WriteWorkbook(t *testing.T, path string, sheets []string, cells map[string]Cells) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			continue
		}
		_, err := f.NewSheet(name)
		require.NoError(t, err)
	}
	for sheet, values := range cells {
		for cell, v := range values {
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

// WriteRows 写入单工作表的行数据
func WriteRows(t *testing.T, path string, rows [][]interface{}) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

// CellValue 读取单元格的值
func CellValue(t *testing.T, path, sheet, cell string) string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return v
}
