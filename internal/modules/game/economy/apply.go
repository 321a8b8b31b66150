package economy

import (
	"strconv"

	"rpg-backend/internal/model/gamemodel"
)

// Ledger 结算涉及的角色可变状态
type Ledger struct {
	Gold           int64
	Gems           int64
	XP             int64
	Level          int
	FreeStatPoints int
	Inventory      gamemodel.Inventory
	Progression    gamemodel.Progression
}

// Rules 结算参数
type Rules struct {
	InventoryCap      int
	LevelUpStatPoints int
	StagesPerChapter  int
}

// Outcome 结算结果
type Outcome struct {
	LevelUp       bool
	NewLevel      int
	ItemsAdded    int
	ItemsOverflow int
}

// ApplyRewards 把会话快照中的奖励写入 ledger，只做加法，进度只前进不后退
func ApplyRewards(l *Ledger, rewards gamemodel.RewardPackage, chapter, stage int, rules Rules) Outcome {
	l.Gold += rewards.Gold
	l.Gems += int64(rewards.Gems)

	var out Outcome
	newXP, newLevel, leveledUp := ApplyXP(l.XP, l.Level, rewards.XP)
	l.XP = newXP
	if leveledUp {
		l.Level = newLevel
		l.FreeStatPoints += rules.LevelUpStatPoints
		out.LevelUp = true
		out.NewLevel = newLevel
	}

	capacity := rules.InventoryCap
	if l.Inventory.MaxSlots > 0 {
		capacity = l.Inventory.MaxSlots
	}
	if l.Inventory.Items == nil {
		l.Inventory.Items = []gamemodel.Item{}
	}
	for _, item := range rewards.Items {
		if len(l.Inventory.Items) >= capacity {
			out.ItemsOverflow++
			continue
		}
		l.Inventory.Items = append(l.Inventory.Items, item)
		out.ItemsAdded++
	}

	AdvanceProgression(&l.Progression.Chapters, chapter, stage, rules.StagesPerChapter)
	return out
}

// AdvanceProgression 记录通关并推进最高章节/关卡；通关章节最后一关后进入下一章第 1 关
func AdvanceProgression(p *gamemodel.ChapterProgression, chapter, stage, stagesPerChapter int) {
	if !p.HasCompleted(chapter, stage) {
		p.CompletedStages = append(p.CompletedStages, gamemodel.StageKey(chapter, stage))
	}
	if p.HighestChapter < 1 {
		p.HighestChapter = 1
	}
	if p.HighestStage < 1 {
		p.HighestStage = 1
	}

	advance := false
	switch {
	case chapter > p.HighestChapter:
		advance = true
	case chapter == p.HighestChapter && stage >= p.HighestStage:
		advance = true
	}
	if !advance {
		return
	}

	if stage == stagesPerChapter {
		p.HighestChapter = chapter + 1
		p.HighestStage = 1
		return
	}
	p.HighestChapter = chapter
	p.HighestStage = stage
}

// IsStageUnlocked 1-1 总是开放；其余关卡要求前一关已通关
func IsStageUnlocked(p gamemodel.ChapterProgression, chapter, stage, stagesPerChapter int) bool {
	if chapter == 1 && stage == 1 {
		return true
	}
	if stage > 1 {
		return p.HasCompleted(chapter, stage-1)
	}
	return p.HasCompleted(chapter-1, stagesPerChapter)
}

// ChapterInfo 单章节进度摘要
type ChapterInfo struct {
	Chapter         int    `json:"chapter"`
	Name            string `json:"name"`
	IsUnlocked      bool   `json:"is_unlocked"`
	StagesCompleted int    `json:"stages_completed"`
	TotalStages     int    `json:"total_stages"`
}

// ChapterOverview 全部章节的解锁与通关情况
func ChapterOverview(p gamemodel.ChapterProgression, totalChapters, stagesPerChapter int) []ChapterInfo {
	chapters := make([]ChapterInfo, 0, totalChapters)
	for ch := 1; ch <= totalChapters; ch++ {
		unlocked := ch <= p.HighestChapter ||
			(ch == p.HighestChapter+1 && p.HasCompleted(ch-1, stagesPerChapter))
		chapters = append(chapters, ChapterInfo{
			Chapter:         ch,
			Name:            chapterName(ch),
			IsUnlocked:      unlocked,
			StagesCompleted: gamemodel.CountChapterStages(p.CompletedStages, ch),
			TotalStages:     stagesPerChapter,
		})
	}
	return chapters
}

func chapterName(ch int) string {
	return "Chapter " + strconv.Itoa(ch)
}
