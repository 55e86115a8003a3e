package middleware

import (
	"net/http"
	"red-social-server/internal/config"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type IPRateLimiter struct {
	ips sync.Map
	mu  sync.Mutex
	r   rate.Limit
	b   int
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	i := &IPRateLimiter{
		r: r,
		b: b,
	}

	go i.cleanupLoop()

	return i
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	if v, ok := i.ips.Load(ip); ok {
		c := v.(*client)
		c.lastSeen = time.Now()
		return c.limiter
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	// Double check
	if v, ok := i.ips.Load(ip); ok {
		c := v.(*client)
		c.lastSeen = time.Now()
		return c.limiter
	}

	limiter := rate.NewLimiter(i.r, i.b)
	i.ips.Store(ip, &client{limiter: limiter, lastSeen: time.Now()})

	return limiter
}

func (i *IPRateLimiter) cleanupLoop() {
	for {
		time.Sleep(1 * time.Minute)
		i.ips.Range(func(key, value interface{}) bool {
			client := value.(*client)
			if time.Since(client.lastSeen) > 3*time.Minute {
				i.ips.Delete(key)
			}
			return true
		})
	}
}

// RateLimitMiddleware 创建一个按 IP 限流的中间件。
// rpsOf / burstOf 从当前配置快照中取限流参数，配置热更新时随之生效。
func RateLimitMiddleware(rpsOf func(config.RateLimitConfig) float64, burstOf func(config.RateLimitConfig) int) gin.HandlerFunc {
	// 每个路由组共用一个 IPRateLimiter 实例
	var limiter *IPRateLimiter
	var once sync.Once

	return func(c *gin.Context) {
		cfg := config.Get().RateLimit
		if !cfg.Enabled {
			c.Next()
			return
		}

		currentRPS := rpsOf(cfg)
		currentBurst := burstOf(cfg)

		once.Do(func() {
			limiter = NewIPRateLimiter(rate.Limit(currentRPS), currentBurst)
		})

		ip := c.ClientIP()
		l := limiter.getLimiter(ip)

		// 配置变更时同步到已有 limiter
		if l.Limit() != rate.Limit(currentRPS) {
			l.SetLimit(rate.Limit(currentRPS))
		}
		if l.Burst() != currentBurst {
			l.SetBurst(currentBurst)
		}

		// Reserve 可以拿到距离下一个令牌的等待时长，被限流时取消预约并返回重试时间
		reservation := l.Reserve()
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			retrySeconds := int64((delay + time.Second - 1) / time.Second)
			c.Header("Retry-After", strconv.FormatInt(retrySeconds, 10))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "请求过于频繁，请稍后再试",
				"retry_in_ms": delay.Milliseconds(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthRateLimit 登录注册接口限流
func AuthRateLimit() gin.HandlerFunc {
	return RateLimitMiddleware(
		func(cfg config.RateLimitConfig) float64 { return cfg.AuthRPS },
		func(cfg config.RateLimitConfig) int { return cfg.AuthBurst },
	)
}

// UploadRateLimit 上传接口限流
func UploadRateLimit() gin.HandlerFunc {
	return RateLimitMiddleware(
		func(cfg config.RateLimitConfig) float64 { return cfg.UploadRPS },
		func(cfg config.RateLimitConfig) int { return cfg.UploadBurst },
	)
}
