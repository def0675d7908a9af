package docx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/allanpk716/evrak_generator/internal/domain"
)

// headerFooterPart 页眉页脚部件名
var headerFooterPart = regexp.MustCompile(`^word/(?:header|footer)\d*\.xml$`)

// replaceInHeadersFooters 按段落替换页眉页脚中的占位符，有变化时重写 path
// 返回替换统计和各部件替换后的纯文本
func replaceInHeadersFooters(path string, replacements domain.ReplacementMap, km domain.KeywordMatcher) (*domain.FillResult, []string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, fmt.Errorf("打开DOCX文件失败: %w", err)
	}

	result := &domain.FillResult{}
	updated := make(map[string][]byte)
	var texts []string
	for _, file := range reader.File {
		if !headerFooterPart.MatchString(file.Name) {
			continue
		}
		content, err := readPart(file)
		if err != nil {
			reader.Close()
			return nil, nil, err
		}
		replaced, partResult := ReplaceInParagraphs(string(content), replacements, km)
		result.Merge(partResult)
		texts = append(texts, ExtractText(replaced))
		if replaced != string(content) {
			updated[file.Name] = []byte(replaced)
		}
	}

	if len(updated) == 0 {
		return result, texts, reader.Close()
	}

	tmpPath := path + ".tmp"
	err = writeParts(tmpPath, reader.File, updated)
	reader.Close()
	if err != nil {
		_ = os.Remove(tmpPath)
		return nil, nil, err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return nil, nil, fmt.Errorf("保存文档失败: %w", err)
	}
	return result, texts, nil
}

func readPart(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("打开文件 %s 失败: %w", file.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("读取文件 %s 失败: %w", file.Name, err)
	}
	return content, nil
}

// writeParts 复制全部部件到新文件，updated 中的部件使用新内容
func writeParts(outputPath string, files []*zip.File, updated map[string][]byte) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, file := range files {
		content, ok := updated[file.Name]
		if !ok {
			if content, err = readPart(file); err != nil {
				return err
			}
		}

		header := file.FileHeader
		w, err := zw.CreateHeader(&header)
		if err != nil {
			return fmt.Errorf("创建ZIP文件头失败: %w", err)
		}
		if _, err := w.Write(content); err != nil {
			return fmt.Errorf("写入文件内容失败: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("写入ZIP文件失败: %w", err)
	}
	return out.Close()
}
