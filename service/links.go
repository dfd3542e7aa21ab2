package service

import (
	"net/url"
	"regexp"
	"strings"

	nanoid "github.com/jaevor/go-nanoid"
	"github.com/rs/zerolog/log"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"gitlab.com/paramountdax-exchange/affiliate_api/monitor"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
	"gitlab.com/paramountdax-exchange/affiliate_api/service/growth"
	"golang.org/x/net/publicsuffix"
	"gorm.io/gorm"
)

const (
	shortCodeLength   = 8
	shortCodeAttempts = 5
)

var shortCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)

// CreateLinkInput godoc
type CreateLinkInput struct {
	URL       string `json:"url" binding:"required"`
	Name      string `json:"name"`
	ShortCode string `json:"short_code"`
}

// UpdateLinkInput carries the editable fields of a link, nil fields are left unchanged
type UpdateLinkInput struct {
	URL    *string `json:"url"`
	Name   *string `json:"name"`
	Status *string `json:"status"`
}

// ClickInput describes the visitor of a tracked link
type ClickInput struct {
	IP        string
	UserAgent string
	Referrer  string
	Country   string
}

// parseTargetURL validates the link target and returns its registrable domain
func parseTargetURL(raw string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return "", "", validation("url", "must be an absolute http or https url")
	}
	host := strings.ToLower(u.Hostname())
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		domain = host
	}
	return raw, domain, nil
}

func withStats(link model.AffiliateLink) model.AffiliateLinkWithStats {
	return model.AffiliateLinkWithStats{
		AffiliateLink:  link,
		ConversionRate: model.Rate(growth.ConversionRate(link.TotalConversions, link.TotalClicks)),
	}
}

// GetLinks returns a page of the links of an affiliate. Deleted links are only
// listed when explicitly filtered.
func (service *Service) GetLinks(filter queries.LinkFilter, page, limit int) (*model.AffiliateLinkList, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, &InvalidStatusError{Status: filter.Status.String()}
	}
	links := make([]model.AffiliateLink, 0)
	var rowCount int64

	q := filter.Apply(service.repo.ConnReader.Model(&model.AffiliateLink{}))
	if err := q.Session(&gorm.Session{}).Count(&rowCount).Error; err != nil {
		return nil, classify(err, "links", "count links")
	}
	db := queries.Paginate(q.Session(&gorm.Session{}).Order("affiliate_links.created_at DESC"), page, limit).Find(&links)
	if db.Error != nil {
		return nil, classify(db.Error, "links", "list links")
	}
	list := &model.AffiliateLinkList{
		Links: make([]model.AffiliateLinkWithStats, 0, len(links)),
		Meta:  pagingMeta(page, limit, rowCount, "created_at DESC", filter.Map()),
	}
	for _, link := range links {
		list.Links = append(list.Links, withStats(link))
	}
	return list, nil
}

// GetLink returns a link owned by the affiliate
func (service *Service) GetLink(affiliateID, id uint64) (*model.AffiliateLink, error) {
	link := model.AffiliateLink{}
	db := service.repo.ConnReader.First(&link, "id = ? AND affiliate_id = ?", id, affiliateID)
	if db.Error != nil {
		return nil, classify(db.Error, "link", "load link")
	}
	return &link, nil
}

// CreateLink creates a tracked link, generating a short code when none is given
func (service *Service) CreateLink(affiliateID uint64, in CreateLinkInput) (*model.AffiliateLinkWithStats, error) {
	target, domain, err := parseTargetURL(in.URL)
	if err != nil {
		return nil, err
	}
	link := &model.AffiliateLink{
		AffiliateID: affiliateID,
		OriginalURL: target,
		Domain:      domain,
		Name:        strings.TrimSpace(in.Name),
		Status:      model.LinkStatusActive,
	}
	if link.Name == "" {
		link.Name = domain
	}

	if custom := strings.TrimSpace(in.ShortCode); custom != "" {
		if !shortCodePattern.MatchString(custom) {
			return nil, validation("short_code", "use 3 to 32 letters, digits, '_' or '-'")
		}
		link.ShortCode = custom
		if err := service.repo.Create(link); err != nil {
			if queries.IsUniqueViolation(err) {
				return nil, &ConflictError{Message: "Short code is already taken"}
			}
			return nil, classify(err, "link", "create link")
		}
		result := withStats(*link)
		return &result, nil
	}

	generate, err := nanoid.Standard(shortCodeLength)
	if err != nil {
		return nil, classify(err, "link", "short code generator")
	}
	for attempt := 1; attempt <= shortCodeAttempts; attempt++ {
		link.ID = 0
		link.ShortCode = generate()
		err = service.repo.Create(link)
		if err == nil {
			result := withStats(*link)
			return &result, nil
		}
		if !queries.IsUniqueViolation(err) {
			return nil, classify(err, "link", "create link")
		}
		log.Warn().Str("section", "links").Int("attempt", attempt).Msg("Short code collision")
	}
	return nil, &ConflictError{Message: "Unable to generate a unique short code"}
}

// UpdateLink changes the name, target or status of a link of the affiliate
func (service *Service) UpdateLink(affiliateID, id uint64, in UpdateLinkInput) (*model.AffiliateLinkWithStats, error) {
	link, err := service.GetLink(affiliateID, id)
	if err != nil {
		return nil, err
	}
	changes := map[string]interface{}{}
	if in.URL != nil {
		target, domain, err := parseTargetURL(*in.URL)
		if err != nil {
			return nil, err
		}
		changes["original_url"] = target
		changes["domain"] = domain
		link.OriginalURL, link.Domain = target, domain
	}
	if in.Name != nil {
		changes["name"] = strings.TrimSpace(*in.Name)
		link.Name = strings.TrimSpace(*in.Name)
	}
	if in.Status != nil {
		status := model.LinkStatus(strings.ToLower(*in.Status))
		if status != model.LinkStatusActive && status != model.LinkStatusPaused {
			return nil, &InvalidStatusError{Status: *in.Status}
		}
		changes["status"] = status
		link.Status = status
	}
	if len(changes) == 0 {
		return nil, validation("", "nothing to update")
	}
	db := service.repo.Conn.Model(&model.AffiliateLink{}).Where("id = ? AND affiliate_id = ?", id, affiliateID).Updates(changes)
	if db.Error != nil {
		return nil, classify(db.Error, "link", "update link")
	}
	result := withStats(*link)
	return &result, nil
}

// DeleteLink marks the link inactive, the row and its statistics are kept
func (service *Service) DeleteLink(affiliateID, id uint64) error {
	db := service.repo.Conn.Model(&model.AffiliateLink{}).
		Where("id = ? AND affiliate_id = ? AND status <> ?", id, affiliateID, model.LinkStatusInactive).
		Update("status", model.LinkStatusInactive)
	if db.Error != nil {
		return classify(db.Error, "link", "delete link")
	}
	if db.RowsAffected == 0 {
		return notFound("link")
	}
	return nil
}

// TrackClick records a visit of an active link and returns the link to redirect to
func (service *Service) TrackClick(code string, in ClickInput) (*model.AffiliateLink, error) {
	link := model.AffiliateLink{}
	db := service.repo.ConnReader.First(&link, "short_code = ? AND status = ?", code, model.LinkStatusActive)
	if db.Error != nil {
		return nil, classify(db.Error, "link", "load link")
	}

	client := parseUserAgent(in.UserAgent)
	click := &model.LinkClick{
		LinkID:      link.ID,
		AffiliateID: link.AffiliateID,
		IPHash:      model.HashString(in.IP),
		Country:     normalizeCountry(in.Country),
		Device:      client.Device,
		Browser:     client.Browser,
		OS:          client.OS,
		Referrer:    in.Referrer,
	}

	tx := service.repo.Conn.Begin()
	if tx.Error != nil {
		return nil, classify(tx.Error, "click", "begin transaction")
	}
	if err := tx.Create(click).Error; err != nil {
		tx.Rollback()
		return nil, classify(err, "click", "create click")
	}
	err := tx.Model(&model.AffiliateLink{}).Where("id = ?", link.ID).
		UpdateColumn("total_clicks", gorm.Expr("total_clicks + 1")).Error
	if err != nil {
		tx.Rollback()
		return nil, classify(err, "link", "count click")
	}
	if err := tx.Commit().Error; err != nil {
		return nil, classify(err, "click", "commit click")
	}
	link.TotalClicks++

	monitor.LinkClicksTotal.Inc()
	service.publish(EventLinkClicked, link.ID, map[string]interface{}{
		"affiliate_id": link.AffiliateID, "country": click.Country, "device": click.Device,
	})
	return &link, nil
}
