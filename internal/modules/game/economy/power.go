package economy

import "rpg-backend/internal/model/gamemodel"

// MinPower 战力下限
const MinPower = 100

// CalculatePower 根据等级与属性计算战力
func CalculatePower(level int, s gamemodel.CharacterStats) int64 {
	power := int64(level)*10 +
		2*int64(s.Strength+s.Agility+s.Intelligence+s.Vitality+s.Defense+s.MagicResistance) +
		3*int64(s.PhysicalDamage+s.MagicDamage)
	return max(power, MinPower)
}
