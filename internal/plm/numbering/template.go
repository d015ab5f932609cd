package numbering

import (
	"strconv"
	"strings"
	"time"
)

// 默认编号模板，组织模板为空或非法时的兜底
const (
	DefaultPartTemplate = "<prefix><part_number><revision>"
	DefaultDocTemplate  = "<prefix><part_number><revision>"
)

// 缺失项目编号的占位符
const missingProjectNumber = "??"

// NumberVars 编号模板变量集
type NumberVars struct {
	Prefix        string
	Number        int
	Revision      string // 已按组织配置渲染好的版本号
	Major         int
	Minor         int
	ProjectNumber string // 为空时渲染为 "??"
	CreatedAt     time.Time
}

// RenderNumber 按模板渲染完整编号
// 只做字面量替换，不是模板语言；未识别的token原样保留，缺失变量用占位符，
// 任何输入都不报错，编号系统的可用性优先于校验
func RenderNumber(tmpl string, vars NumberVars) string {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultPartTemplate
	}

	project := vars.ProjectNumber
	if project == "" {
		project = missingProjectNumber
	}

	r := strings.NewReplacer(
		"<prefix>", vars.Prefix,
		"<part_number>", strconv.Itoa(vars.Number),
		"<revision>", vars.Revision,
		"<major_revision>", strconv.Itoa(vars.Major),
		"<minor_revision>", strconv.Itoa(vars.Minor),
		"<project_number>", project,
		"<day>", strconv.Itoa(vars.CreatedAt.Day()),
		"<month>", strconv.Itoa(int(vars.CreatedAt.Month())),
		"<year>", strconv.Itoa(vars.CreatedAt.Year()),
	)
	return r.Replace(tmpl)
}
