package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gitlab.com/paramountdax-exchange/affiliate_api/featureflags"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
)

// ContentRequest godoc
type ContentRequest struct {
	LinkID   uint64 `json:"link_id" binding:"required"`
	Platform string `json:"platform"`
	Tone     string `json:"tone"`
}

// ContentPrompt is what a generator receives
type ContentPrompt struct {
	Platform string
	Tone     string
	Name     string
	URL      string
	Username string
}

// GeneratedContent is the promotional copy returned to the affiliate
type GeneratedContent struct {
	Platform  string `json:"platform"`
	Tone      string `json:"tone"`
	Content   string `json:"content"`
	LinkURL   string `json:"link_url"`
	Used      int64  `json:"used"`
	Quota     int    `json:"quota"`
	Generated bool   `json:"generated"`
}

// ContentGenerator produces promotional text. External text generators implement it.
type ContentGenerator interface {
	Generate(ctx context.Context, prompt ContentPrompt) (string, error)
}

// TemplateGenerator renders a fixed template per platform
type TemplateGenerator struct{}

var contentTemplates = map[string]string{
	"twitter":   "%s %s Check it out: %s #ad",
	"instagram": "%s\n\n%s\n\nLink in bio: %s\n#affiliate #deal",
	"facebook":  "%s\n\n%s\n\nSee more: %s",
	"email":     "Hi there,\n\n%s\n\n%s\n\nYou can find it here: %s\n\nCheers",
	"blog":      "## %s\n\n%s\n\nRead more and get yours here: %s",
}

var contentTones = map[string]string{
	"friendly":     "I have been loving this lately and thought you would too.",
	"professional": "A solution worth evaluating for your needs.",
	"excited":      "You have to see this, it is amazing!",
	"casual":       "Found something cool, take a look.",
}

func (TemplateGenerator) Generate(ctx context.Context, prompt ContentPrompt) (string, error) {
	tmpl, ok := contentTemplates[prompt.Platform]
	if !ok {
		return "", validation("platform", "unsupported platform")
	}
	intro, ok := contentTones[prompt.Tone]
	if !ok {
		return "", validation("tone", "unsupported tone")
	}
	title := prompt.Name
	if title == "" {
		title = "My pick of the week"
	}
	return fmt.Sprintf(tmpl, title, intro, prompt.URL), nil
}

func endOfDay(now time.Time) time.Time {
	return now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
}

func quotaKey(affiliateID uint64, now time.Time) string {
	return fmt.Sprintf("content:%d:%s", affiliateID, now.UTC().Format(dayLayout))
}

// GenerateContent creates promotional copy for one of the affiliate's links and
// counts it against the daily quota of the affiliate's tier
func (service *Service) GenerateContent(affiliateID uint64, req ContentRequest) (*GeneratedContent, error) {
	if !featureflags.IsEnabled(featureflags.ContentGenerate) {
		return nil, validation("content", "content generation is disabled")
	}
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if platform == "" {
		platform = "twitter"
	}
	tone := strings.ToLower(strings.TrimSpace(req.Tone))
	if tone == "" {
		tone = "friendly"
	}
	if _, ok := contentTemplates[platform]; !ok {
		return nil, validation("platform", "platform must be one of twitter, instagram, facebook, email, blog")
	}
	if _, ok := contentTones[tone]; !ok {
		return nil, validation("tone", "tone must be one of friendly, professional, excited, casual")
	}

	affiliate, err := service.GetAffiliateByID(affiliateID)
	if err != nil {
		return nil, err
	}
	link, err := service.GetLink(affiliateID, req.LinkID)
	if err != nil {
		return nil, err
	}
	if link.Status == model.LinkStatusInactive {
		return nil, notFound("link")
	}

	now := service.now()
	quota := service.cfg.Content.QuotaFor(affiliate.Tier.String())
	used, err := service.counter.Incr(quotaKey(affiliateID, now), endOfDay(now))
	if err != nil {
		return nil, classify(err, "content quota", "increment content quota")
	}
	if quota > 0 && used > int64(quota) {
		return nil, &RateLimitError{Message: fmt.Sprintf("Daily content quota of %d reached for the %s tier", quota, affiliate.Tier)}
	}

	url := service.linkURL(link)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	text, err := service.generator.Generate(ctx, ContentPrompt{
		Platform: platform,
		Tone:     tone,
		Name:     link.Name,
		URL:      url,
		Username: affiliate.Username,
	})
	if err != nil {
		return nil, err
	}

	return &GeneratedContent{
		Platform:  platform,
		Tone:      tone,
		Content:   text,
		LinkURL:   url,
		Used:      used,
		Quota:     quota,
		Generated: true,
	}, nil
}

// linkURL is the public redirect address of a link
func (service *Service) linkURL(link *model.AffiliateLink) string {
	domain := strings.TrimRight(service.cfg.Server.API.Domain, "/")
	if domain == "" {
		return "/r/" + link.ShortCode
	}
	return domain + "/r/" + link.ShortCode
}
