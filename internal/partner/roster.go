package partner

import (
	"langpal/internal/directory"
	"langpal/internal/model"
)

// Seeded returns the demo partners every install ships with. In a deployed
// app this list would come from a matching API.
func Seeded() []model.Partner {
	return []model.Partner{
		{
			ID:       "1",
			Name:     "María",
			Native:   "Spanish",
			Learning: "English",
			Status:   model.StatusOnline,
			Bio:      "Loves coffee and short daily chats.",
			Gender:   "female",
			Pronouns: "she/her",
		},
		{
			ID:       "2",
			Name:     "Kenji",
			Native:   "Japanese",
			Learning: "Spanish",
			Status:   model.StatusRecentlyActive,
			Bio:      "Learns Spanish for travel. Likes music.",
			Gender:   "male",
			Pronouns: "he/him",
		},
		{
			ID:       "3",
			Name:     "Amina",
			Native:   "Arabic",
			Learning: "French",
			Status:   model.StatusOnline,
			Bio:      "Teacher, available on weekends.",
			Gender:   "female",
			Pronouns: "she/her",
		},
		{
			ID:       "4",
			Name:     "Luca",
			Native:   "Italian",
			Learning: "English",
			Status:   model.StatusRecentlyActive,
			Bio:      "Foodie and cyclist.",
			Gender:   "non-binary",
			Pronouns: "they/them",
		},
		{
			ID:       "5",
			Name:     "Sofia",
			Native:   "Portuguese",
			Learning: "German",
			Status:   model.StatusOnline,
			Bio:      "Student, weekday evenings.",
			Gender:   "female",
			Pronouns: "she/her",
		},
	}
}

// Roster resolves account ids to display partners: seeded partners first,
// then registered accounts from the directory.
type Roster struct {
	directory *directory.Directory
	seeds     []model.Partner
}

// Constructor used in DI/wire.
func NewRoster(dir *directory.Directory) *Roster {
	return &Roster{directory: dir, seeds: Seeded()}
}

// Resolve returns the display identity for an account id. Registered
// accounts are reported as online with no bio, matching the source app.
func (r *Roster) Resolve(id string) (model.Partner, bool) {
	for _, p := range r.seeds {
		if p.ID == id {
			return p, true
		}
	}
	if account, ok := r.directory.Lookup(id); ok {
		return fromAccount(account), true
	}
	return model.Partner{}, false
}

// List returns every browsable partner, seeds plus registered accounts,
// excluding excludeID (the profile currently focused, or the viewer).
func (r *Roster) List(excludeID string) []model.Partner {
	combined := make([]model.Partner, 0, len(r.seeds))
	combined = append(combined, r.seeds...)
	for _, account := range r.directory.Users() {
		account := account
		combined = append(combined, fromAccount(&account))
	}
	if excludeID == "" {
		return combined
	}
	visible := combined[:0]
	for _, p := range combined {
		if p.ID != excludeID {
			visible = append(visible, p)
		}
	}
	return visible
}

func fromAccount(account *model.Account) model.Partner {
	return model.Partner{
		ID:       account.ID,
		Name:     account.DisplayName(),
		Native:   account.Native,
		Learning: account.Learning,
		Status:   model.StatusOnline,
		Gender:   account.Gender,
		Pronouns: account.Pronouns,
	}
}
