package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// ImagePool переиспользует кадры image.RGBA одного размера, чтобы
// рендер тысяч одинаковых кадров не нагружал сборщик мусора.
type ImagePool struct {
	pools map[image.Rectangle]*sync.Pool
	mu    sync.RWMutex

	allocated atomic.Int64
	reused    atomic.Int64
}

var shared = NewImagePool()

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Rectangle]*sync.Pool)}
}

// SharedPool возвращает общий для процесса пул кадров.
func SharedPool() *ImagePool {
	return shared
}

// Get возвращает кадр нужного размера. Содержимое кадра не очищается.
func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	p.mu.RLock()
	pool, exists := p.pools[rect]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[rect]
		if !exists {
			pool = &sync.Pool{}
			p.pools[rect] = pool
		}
		p.mu.Unlock()
	}

	if img, ok := pool.Get().(*image.RGBA); ok {
		p.reused.Add(1)
		return img
	}
	p.allocated.Add(1)
	return image.NewRGBA(rect)
}

// Put возвращает кадр в пул. Кадры неизвестного размера игнорируются.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool, exists := p.pools[img.Rect]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}

// Stats возвращает число созданных и повторно выданных кадров.
func (p *ImagePool) Stats() (allocated, reused int64) {
	return p.allocated.Load(), p.reused.Load()
}
