// Package random 提供关卡生成使用的随机源
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"
)

// NewSeed 使用 crypto/rand 生成种子
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Source 为每次关卡生成提供独立的随机数生成器
type Source interface {
	New() (rng *rand.Rand, seed int64)
}

// CryptoSource 每次调用都用 crypto/rand 重新取种
type CryptoSource struct{}

// New 取种失败时退化为纳秒时间戳
func (CryptoSource) New() (*rand.Rand, int64) {
	seed, err := NewSeed()
	if err != nil {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)), seed
}

// FixedSource 固定种子，测试中使用
type FixedSource int64

func (s FixedSource) New() (*rand.Rand, int64) {
	return rand.New(rand.NewSource(int64(s))), int64(s)
}
