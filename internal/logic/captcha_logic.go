package logic

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"madmin/server/internal/config"
	"madmin/server/internal/svc"
	"madmin/server/internal/types"
	"madmin/server/pkg/cachekey"
	"madmin/server/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CaptchaLogic 图形验证码逻辑
type CaptchaLogic struct {
	svc *svc.ServiceContext
}

// NewCaptchaLogic 创建验证码逻辑
func NewCaptchaLogic(svc *svc.ServiceContext) *CaptchaLogic {
	return &CaptchaLogic{svc: svc}
}

func (l *CaptchaLogic) cfg() config.CaptchaConfig {
	c := l.svc.Config.Captcha
	if c.Width <= 0 {
		c.Width = 100
	}
	if c.Height <= 0 {
		c.Height = 50
	}
	if c.Length <= 0 {
		c.Length = 4
	}
	if c.Expire <= 0 {
		c.Expire = 300
	}
	return c
}

// Generate 生成图形验证码，答案存入Redis
func (l *CaptchaLogic) Generate(ctx context.Context) (*types.CaptchaResponse, error) {
	cfg := l.cfg()
	code := utils.RandomNumeral(cfg.Length)
	id := uuid.NewString()

	err := l.svc.RDB.Set(ctx, cachekey.Captcha(id), strings.ToLower(code),
		time.Duration(cfg.Expire)*time.Second).Err()
	if err != nil {
		return nil, err
	}

	svg := renderCaptchaSVG(code, cfg.Width, cfg.Height)
	return &types.CaptchaResponse{
		ID:    id,
		Image: "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg)),
	}, nil
}

// Verify 校验验证码，无论对错都一次性消费
func (l *CaptchaLogic) Verify(ctx context.Context, id, code string) error {
	if id == "" || code == "" {
		return errors.New("验证码错误")
	}
	key := cachekey.Captcha(id)
	want, err := l.svc.RDB.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errors.New("验证码已失效")
		}
		return err
	}
	l.svc.RDB.Del(ctx, key)
	if strings.ToLower(code) != want {
		return errors.New("验证码错误")
	}
	return nil
}

// renderCaptchaSVG 渲染数字验证码为SVG
func renderCaptchaSVG(code string, width, height int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		width, height, width, height)
	sb.WriteString(`<rect width="100%" height="100%" fill="#f2f3f5"/>`)
	step := width / (len(code) + 1)
	for i, ch := range code {
		x := step * (i + 1)
		y := height/2 + 8
		fmt.Fprintf(&sb, `<text x="%d" y="%d" font-size="26" font-family="monospace" fill="#4a5568" text-anchor="middle">%c</text>`,
			x, y, ch)
	}
	sb.WriteString(`</svg>`)
	return sb.String()
}
