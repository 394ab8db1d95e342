package cache

import "time"

func (m *MemoryStore) SetNow(fn func() time.Time) { m.now = fn }
