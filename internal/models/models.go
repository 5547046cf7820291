package models

import "time"

// User represents an account in the DarkChannel platform. Accounts are keyed
// by the email reported by the identity provider and created lazily on first
// authenticated access.
type User struct {
	ID                string
	Email             string
	Name              string
	Credits           int
	Role              string
	Phone             string
	FoundUs           string
	PreferredLanguage string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Video is one requested script/video generation unit, tracked through the
// Draft -> Waiting -> Executing -> Done lifecycle. A creation request fans
// out into count x languages rows.
type Video struct {
	ID                    string
	UserEmail             string
	ChannelID             *string
	Language              string
	Status                string
	Genre                 string
	Description           string
	Structure             string
	Screenplay            string
	Tone                  string
	Elements              string
	CompositionRules      string
	Techniques            string
	LightingAndAtmosphere string
	CharacterCount        int
	VideoURL              string
	ArchiveStatus         string
	ArchiveURL            string
	ArchiveSize           int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

const (
	StatusDraft     = "Draft"
	StatusWaiting   = "Waiting"
	StatusExecuting = "Executing"
	StatusDone      = "Done"
)

// VideoStatuses lists the states an owner may set through the update surface.
var VideoStatuses = []string{StatusDraft, StatusWaiting, StatusExecuting, StatusDone}

const (
	ArchiveStatusPending = "pending"
	ArchiveStatusReady   = "ready"
	ArchiveStatusFailed  = "failed"
)

// Languages supported for script generation.
const (
	LanguagePTBR = "pt-BR"
	LanguageEN   = "en"
	LanguageES   = "es"
)

// SupportedLanguages is the fixed enum accepted by the creation endpoint.
var SupportedLanguages = []string{LanguagePTBR, LanguageEN, LanguageES}

// IsSupportedLanguage reports whether lang is in the fixed language enum.
func IsSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// CharacterCounts lists the accepted script lengths.
var CharacterCounts = []int{2500, 3500}

// ImagesPerVideo is fixed by the automation pipeline.
const ImagesPerVideo = 10

// CreditPacks lists the purchasable credit bundle sizes.
var CreditPacks = []int{5, 30, 90}

// Channel is a YouTube channel owned by exactly one user. OAuth credentials
// are sealed before they reach the database.
type Channel struct {
	ID             string
	UserEmail      string
	Name           string
	OAuthEncrypted string
	CreatedAt      time.Time
}

// Genre is read-only reference data keyed by (language, name) supplying
// default creative fields for new videos.
type Genre struct {
	Language              string
	Name                  string
	Description           string
	Structure             string
	Tone                  string
	Elements              string
	CompositionRules      string
	Techniques            string
	LightingAndAtmosphere string
}
