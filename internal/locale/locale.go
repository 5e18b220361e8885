// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package locale holds the client's bilingual text handling. The active
// locale is an explicit value passed down from configuration; nothing in
// the UI infers it from the environment.
package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/bidi"
)

// =============================================================================
// Locale
// =============================================================================

// Locale selects the interface language.
type Locale string

const (
	Arabic  Locale = "ar"
	English Locale = "en"
)

// Parse maps a config string to a Locale, defaulting to Arabic.
func Parse(s string) Locale {
	if s == string(English) {
		return English
	}
	return Arabic
}

// Tag returns the BCP 47 language tag.
func (l Locale) Tag() language.Tag {
	if l == English {
		return language.English
	}
	return language.Arabic
}

// RTL reports whether the interface lays out right-to-left.
func (l Locale) RTL() bool {
	return l == Arabic
}

// Other returns the opposite locale. Used by the locale toggle key.
func (l Locale) Other() Locale {
	if l == Arabic {
		return English
	}
	return Arabic
}

// =============================================================================
// Per-text direction
// =============================================================================

// TextRTL reports whether a piece of content should render right-to-left,
// decided by its first strong directional character. Conversations mix
// Arabic and English freely, so direction is per message, not per locale.
func TextRTL(s string) bool {
	if s == "" {
		return false
	}
	var p bidi.Paragraph
	if _, err := p.SetString(s); err != nil {
		return false
	}
	o, err := p.Order()
	if err != nil {
		return false
	}
	return o.Direction() == bidi.RightToLeft
}

// =============================================================================
// String table
// =============================================================================

// Strings is the localized UI chrome for one locale.
type Strings struct {
	NewConversation   string
	Conversations     string
	Lessons           string
	Upload            string
	Send              string
	Thinking          string
	Login             string
	Signup            string
	Logout            string
	Email             string
	Password          string
	Username          string
	FullName          string
	AskPlaceholder    string
	DeleteConfirm     string
	LocalOnlyBadge    string
	UploadPrompt      string
	YouTubePrompt     string
	SearchLessons     string
	Cancel            string
	PhaseDownloading  string
	PhaseExtracting   string
	PhaseConverting   string
	PhaseTranscribing string
	ErrNotLoggedIn    string
	ErrSendFailed     string
	ErrLoadFailed     string
	ErrCreateFailed   string
	ErrDeleteFailed   string
	SocialLoginStub   string
}

var arabicStrings = Strings{
	NewConversation:   "محادثة جديدة",
	Conversations:     "المحادثات",
	Lessons:           "الدروس",
	Upload:            "رفع ملف",
	Send:              "إرسال",
	Thinking:          "جاري التفكير...",
	Login:             "تسجيل الدخول",
	Signup:            "إنشاء حساب",
	Logout:            "تسجيل الخروج",
	Email:             "البريد الإلكتروني",
	Password:          "كلمة المرور",
	Username:          "اسم المستخدم",
	FullName:          "الاسم الكامل",
	AskPlaceholder:    "اكتب سؤالك هنا...",
	DeleteConfirm:     "حذف المحادثة؟ (y/n)",
	LocalOnlyBadge:    "محلي فقط",
	UploadPrompt:      "مسار الملف الصوتي أو المرئي",
	YouTubePrompt:     "رابط يوتيوب",
	SearchLessons:     "ابحث في الدروس",
	Cancel:            "إلغاء",
	PhaseDownloading:  "جاري تحميل الفيديو...",
	PhaseExtracting:   "جاري استخراج الصوت...",
	PhaseConverting:   "جاري التحويل...",
	PhaseTranscribing: "جاري التفريغ النصي...",
	ErrNotLoggedIn:    "يجب تسجيل الدخول أولاً",
	ErrSendFailed:     "فشل إرسال الرسالة",
	ErrLoadFailed:     "فشل تحميل المحادثة",
	ErrCreateFailed:   "فشل إنشاء المحادثة",
	ErrDeleteFailed:   "فشل حذف المحادثة",
	SocialLoginStub:   "تسجيل الدخول الاجتماعي غير متاح بعد",
}

var englishStrings = Strings{
	NewConversation:   "New Conversation",
	Conversations:     "Conversations",
	Lessons:           "Lessons",
	Upload:            "Upload",
	Send:              "Send",
	Thinking:          "Thinking...",
	Login:             "Log in",
	Signup:            "Sign up",
	Logout:            "Log out",
	Email:             "Email",
	Password:          "Password",
	Username:          "Username",
	FullName:          "Full name",
	AskPlaceholder:    "Type your question...",
	DeleteConfirm:     "Delete conversation? (y/n)",
	LocalOnlyBadge:    "local only",
	UploadPrompt:      "Path to audio or video file",
	YouTubePrompt:     "YouTube URL",
	SearchLessons:     "Search lessons",
	Cancel:            "Cancel",
	PhaseDownloading:  "Downloading video...",
	PhaseExtracting:   "Extracting audio...",
	PhaseConverting:   "Converting...",
	PhaseTranscribing: "Transcribing...",
	ErrNotLoggedIn:    "You must log in first",
	ErrSendFailed:     "Failed to send message",
	ErrLoadFailed:     "Failed to load conversation",
	ErrCreateFailed:   "Failed to create conversation",
	ErrDeleteFailed:   "Failed to delete conversation",
	SocialLoginStub:   "Social login is not yet implemented",
}

// T returns the string table for a locale.
func T(l Locale) Strings {
	if l == English {
		return englishStrings
	}
	return arabicStrings
}
