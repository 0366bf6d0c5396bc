package core

import "time"

// Season 是日历季节，用于商品季节属性与当季加权。
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

// Seasons 是固定顺序的季节列表，编码时按此顺序展开指示位。
var Seasons = []Season{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter}

// SeasonOf 返回时间对应的季节：2-4 月为春、5-7 月为夏、8-10 月为秋，其余为冬。
func SeasonOf(t time.Time) Season {
	switch m := int(t.Month()); {
	case m >= 2 && m <= 4:
		return SeasonSpring
	case m >= 5 && m <= 7:
		return SeasonSummer
	case m >= 8 && m <= 10:
		return SeasonFall
	default:
		return SeasonWinter
	}
}

// SeasonIndex 返回季节在 Seasons 中的下标，未知季节返回 -1。
func SeasonIndex(s Season) int {
	for i, v := range Seasons {
		if v == s {
			return i
		}
	}
	return -1
}
