package gamemodel

// BattleStats 客户端上报的战斗统计
type BattleStats struct {
	TotalDamageDealt    int64 `json:"total_damage_dealt" validate:"gte=0" example:"1200"`
	TotalDamageReceived int64 `json:"total_damage_received" validate:"gte=0" example:"150"`
	MobsKilled          int   `json:"mobs_killed" validate:"gte=0" example:"3"`
	SkillsUsed          int   `json:"skills_used" validate:"gte=0" example:"4"`
	PotionsUsed         int   `json:"potions_used" validate:"gte=0" example:"1"`
	DurationMS          int64 `json:"duration_ms" validate:"gte=0" example:"45000"`
}

// MobKill 单次击杀记录，timestamp 为毫秒时间戳
type MobKill struct {
	Name      string `json:"name" example:"Orc Warrior"`
	Level     int    `json:"level" example:"1"`
	MaxHealth int    `json:"max_health" example:"100"`
	Timestamp int64  `json:"timestamp" example:"1700000010000"`
}

// BattleLog 客户端上报的战斗日志，时间均为毫秒
type BattleLog struct {
	Version         int         `json:"version" example:"1"`
	BattleStartTime int64       `json:"battle_start_time" example:"1700000000000"`
	BattleEndTime   int64       `json:"battle_end_time" example:"1700000045000"`
	Chapter         int         `json:"chapter" example:"1"`
	Stage           int         `json:"stage" example:"1"`
	PlayerLevel     int         `json:"player_level" example:"1"`
	PlayerPower     int64       `json:"player_power" example:"100"`
	PlayerClass     int         `json:"player_class" example:"1"`
	Stats           BattleStats `json:"stats"`
	MobKills        []MobKill   `json:"mob_kills"`
	Checksum        *string     `json:"checksum,omitempty"`
}

// DurationWallMS 起止时间差
func (l BattleLog) DurationWallMS() int64 {
	return l.BattleEndTime - l.BattleStartTime
}
