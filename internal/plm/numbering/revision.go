// Package numbering 实现修订版本号与完整编号的纯计算核心。
// 所有函数无副作用、不访问数据库，由各条目服务作为薄适配层调用。
package numbering

import (
	"fmt"
	"strconv"
)

// Config 版本号格式配置（来自组织设置，零件与文档各一份）
type Config struct {
	UseNumberRevisions      bool
	RevisionFormat          string // "major-only" / "major-minor"
	StartMajorRevisionAtOne bool
}

const (
	FormatMajorOnly  = "major-only"
	FormatMajorMinor = "major-minor"
)

// FormatRevision 把修订计数对渲染成展示用版本号
// 字母模式: 0→"A", 1→"B"，次版本始终为数字后缀 "-0"、"-1"
// 数字模式: start_major_revision_at_one 只影响显示偏移，不影响存储值；
// 次版本显示恒从0起，不受主版本偏移开关影响
func FormatRevision(major, minor int, cfg Config) string {
	var rev string
	if cfg.UseNumberRevisions {
		displayMajor := major
		if cfg.StartMajorRevisionAtOne {
			displayMajor++
		}
		rev = strconv.Itoa(displayMajor)
	} else {
		rev = letterRevision(major)
	}

	if cfg.RevisionFormat == FormatMajorMinor {
		rev = fmt.Sprintf("%s-%d", rev, minor)
	}
	return rev
}

// letterRevision 把主版本计数转成字母序列
// 超过'Z'后按表格列规则延续: 25→"Z", 26→"AA", 27→"AB"
func letterRevision(n int) string {
	if n < 0 {
		n = 0
	}
	s := ""
	for {
		s = string(rune('A'+n%26)) + s
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return s
}

// Bump 计算新修订的计数对
// 主版本升级: (major+1, 0)；次版本升级: (major, minor+1)
// 只在创建新修订行时调用一次，历史修订行的计数不可变
func Bump(major, minor int, majorBump bool) (int, int) {
	if majorBump {
		return major + 1, 0
	}
	return major, minor + 1
}

// Counters 修订计数对，(major, minor) 字典序是修订排序的唯一依据
type Counters struct {
	Major int
	Minor int
}

// Less 按全序比较
func (c Counters) Less(o Counters) bool {
	if c.Major != o.Major {
		return c.Major < o.Major
	}
	return c.Minor < o.Minor
}

// LatestIndex 返回族内最新修订的下标，空切片返回-1
// 相等计数对（历史脏数据）取先出现者，保证结果确定
func LatestIndex(revs []Counters) int {
	if len(revs) == 0 {
		return -1
	}
	latest := 0
	for i := 1; i < len(revs); i++ {
		if revs[latest].Less(revs[i]) {
			latest = i
		}
	}
	return latest
}
