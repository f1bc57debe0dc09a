package model

// JSON tags on every type here match the key layout the mobile app already
// wrote to device storage. Changing a tag changes the on-disk format, so the
// structs stay hand-mapped instead of going through the ORM layer.

// Account is a registered user as stored in the LP_USERS_V1 array.
// The password is stored in plain text; login is an exact two-field match.
type Account struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	DOB       string `json:"dob,omitempty"`
	Native    string `json:"native,omitempty"`
	Learning  string `json:"learning,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Pronouns  string `json:"pronouns,omitempty"`
	AvatarURI string `json:"avatarUri,omitempty"`
}

// DisplayName returns "first last" when a first name is set, otherwise the
// username. This is the snapshot written into outgoing messages.
func (a *Account) DisplayName() string {
	if a.FirstName == "" {
		return a.Username
	}
	name := a.FirstName
	if a.LastName != "" {
		name += " " + a.LastName
	}
	return name
}

// Message is one chat message inside a chat-<idLow>-<idHigh> array.
// Text, sender, receiver and timestamp are immutable after creation; only
// the Read flag is ever rewritten.
type Message struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	SenderName string `json:"senderName"`
	Timestamp  int64  `json:"timestamp"` // milliseconds since epoch
	Language   string `json:"language"`
	Read       bool   `json:"read"`
	ChatID     string `json:"chatId,omitempty"`
}

// ReportReason is one of the fixed reasons offered by the report sheet.
type ReportReason string

const (
	ReasonHarassment    ReportReason = "Harassment or bullying"
	ReasonSpam          ReportReason = "Spam or scam"
	ReasonInappropriate ReportReason = "Inappropriate content"
	ReasonHateSpeech    ReportReason = "Hate speech"
	ReasonOther         ReportReason = "Other"
)

// ReportReasons lists every accepted reason, in display order.
func ReportReasons() []ReportReason {
	return []ReportReason{
		ReasonHarassment,
		ReasonSpam,
		ReasonInappropriate,
		ReasonHateSpeech,
		ReasonOther,
	}
}

// Valid reports whether r is a member of the fixed reason set.
func (r ReportReason) Valid() bool {
	switch r {
	case ReasonHarassment, ReasonSpam, ReasonInappropriate, ReasonHateSpeech, ReasonOther:
		return true
	}
	return false
}

// Report is a moderation record in the global append-only "reports" array.
type Report struct {
	ID          string       `json:"id"`
	ReporterID  string       `json:"userId"`
	PartnerID   string       `json:"partnerId"`
	Reason      ReportReason `json:"reason"`
	Description string       `json:"description,omitempty"`
	Timestamp   int64        `json:"timestamp"`
}

// Partner is a display identity for the browsing list and chat list rows.
// It is derived, never persisted on its own.
type Partner struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Native   string `json:"native"`
	Learning string `json:"learning"`
	Status   string `json:"status"`
	Bio      string `json:"bio,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Pronouns string `json:"pronouns,omitempty"`
}

const (
	StatusOnline         = "Online"
	StatusRecentlyActive = "Recently Active"
)

// ChatListEntry is one row of the chat-list projection for a viewer.
type ChatListEntry struct {
	Key         string   `json:"key"`
	Partner     Partner  `json:"partner"`
	LastMessage *Message `json:"lastMessage,omitempty"`
	UnreadCount int      `json:"unreadCount"`
}
