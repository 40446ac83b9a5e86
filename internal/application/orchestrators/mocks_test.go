package orchestrators

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"bookclub/internal/domain/member"
	"bookclub/internal/domain/profile"
	"bookclub/internal/domain/suggestion"
	"bookclub/internal/domain/vote"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() Clock { return func() time.Time { return fixedNow } }

// --- Mock profile store ---

type mockProfileStore struct {
	mu       sync.Mutex
	profiles map[string]profile.Profile
}

func newMockProfileStore(ps ...profile.Profile) *mockProfileStore {
	m := &mockProfileStore{profiles: make(map[string]profile.Profile)}
	for _, p := range ps {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *mockProfileStore) GetByID(_ context.Context, id string) (profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

func (m *mockProfileStore) GetByEmail(_ context.Context, email string) (profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (m *mockProfileStore) GetByResetToken(_ context.Context, token string) (profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if token != "" && p.ResetToken == token {
			return p, nil
		}
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (m *mockProfileStore) Create(_ context.Context, p profile.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.profiles {
		if existing.Email == p.Email {
			return profile.ErrEmailTaken
		}
	}
	m.profiles[p.ID] = p
	return nil
}

func (m *mockProfileStore) Save(_ context.Context, p profile.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.ID]; !ok {
		return profile.ErrNotFound
	}
	m.profiles[p.ID] = p
	return nil
}

func (m *mockProfileStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[id]; !ok {
		return profile.ErrNotFound
	}
	delete(m.profiles, id)
	return nil
}

func (m *mockProfileStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.profiles), nil
}

func (m *mockProfileStore) SetResetToken(_ context.Context, id, token string, expiry, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return profile.ErrNotFound
	}
	p.ResetToken, p.ResetTokenExpiry = token, expiry
	p.UpdatedAt = now
	m.profiles[id] = p
	return nil
}

func (m *mockProfileStore) ConsumeResetToken(_ context.Context, token, hash string, now time.Time) (profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.profiles {
		if token == "" || p.ResetToken != token {
			continue
		}
		if err := p.CheckResetToken(token, now); err != nil {
			return profile.Profile{}, err
		}
		p.PasswordHash = hash
		p.ClearResetToken()
		m.profiles[id] = p
		return p, nil
	}
	return profile.Profile{}, profile.ErrResetTokenInvalid
}

// --- Mock member store ---

type mockMemberStore struct {
	members map[string]member.Member
}

func newMockMemberStore(ms ...member.Member) *mockMemberStore {
	s := &mockMemberStore{members: make(map[string]member.Member)}
	for _, m := range ms {
		s.members[m.ID] = m
	}
	return s
}

func (s *mockMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	m, ok := s.members[id]
	if !ok {
		return member.Member{}, member.ErrNotFound
	}
	return m, nil
}

func (s *mockMemberStore) GetByProfileID(_ context.Context, profileID string) (member.Member, error) {
	for _, m := range s.members {
		if m.ProfileID == profileID {
			return m, nil
		}
	}
	return member.Member{}, member.ErrNotFound
}

func (s *mockMemberStore) CreateAtEnd(_ context.Context, m member.Member) (member.Member, error) {
	maxOrder := 0
	for _, existing := range s.members {
		if m.ProfileID != "" && existing.ProfileID == m.ProfileID {
			return member.Member{}, member.ErrProfileHasMember
		}
		maxOrder = max(maxOrder, existing.OrderIndex)
	}
	m.OrderIndex = maxOrder + 1
	s.members[m.ID] = m
	return m, nil
}

func (s *mockMemberStore) Save(_ context.Context, m member.Member) error {
	s.members[m.ID] = m
	return nil
}

func (s *mockMemberStore) Link(_ context.Context, memberID, profileID string, now time.Time) (member.Member, error) {
	m, ok := s.members[memberID]
	if !ok {
		return member.Member{}, member.ErrNotFound
	}
	for _, other := range s.members {
		if other.ID != memberID && other.ProfileID == profileID {
			return member.Member{}, member.ErrProfileHasMember
		}
	}
	if err := m.LinkTo(profileID); err != nil {
		return member.Member{}, err
	}
	m.UpdatedAt = now
	s.members[memberID] = m
	return m, nil
}

func (s *mockMemberStore) unlinked() []string {
	var ids []string
	for _, m := range s.members {
		if !m.IsLinked() {
			ids = append(ids, m.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// --- Mock suggestion store ---

type mockSuggestionStore struct {
	mu          sync.Mutex
	suggestions map[string]suggestion.Suggestion
}

func newMockSuggestionStore() *mockSuggestionStore {
	return &mockSuggestionStore{suggestions: make(map[string]suggestion.Suggestion)}
}

func (s *mockSuggestionStore) CreateWithinQuota(_ context.Context, sg suggestion.Suggestion, quota int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, existing := range s.suggestions {
		if existing.UserID == sg.UserID && existing.Period() == sg.Period() {
			n++
		}
	}
	if n >= quota {
		return suggestion.ErrQuotaExceeded
	}
	s.suggestions[sg.ID] = sg
	return nil
}

func (s *mockSuggestionStore) GetByID(_ context.Context, id string) (suggestion.Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sg, ok := s.suggestions[id]
	if !ok {
		return suggestion.Suggestion{}, suggestion.ErrNotFound
	}
	return sg, nil
}

func (s *mockSuggestionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.suggestions[id]; !ok {
		return suggestion.ErrNotFound
	}
	delete(s.suggestions, id)
	return nil
}

// --- Mock vote store ---

type mockVoteStore struct {
	votes  map[[2]string]bool
	counts map[string]int
}

func newMockVoteStore(suggestionIDs ...string) *mockVoteStore {
	s := &mockVoteStore{votes: make(map[[2]string]bool), counts: make(map[string]int)}
	for _, id := range suggestionIDs {
		s.counts[id] = 0
	}
	return s
}

func (s *mockVoteStore) Cast(_ context.Context, v vote.Vote) (vote.Tally, error) {
	if _, ok := s.counts[v.SuggestionID]; !ok {
		return vote.Tally{}, suggestion.ErrNotFound
	}
	key := [2]string{v.UserID, v.SuggestionID}
	if s.votes[key] {
		return vote.Tally{}, vote.ErrAlreadyVoted
	}
	s.votes[key] = true
	s.counts[v.SuggestionID]++
	return vote.Tally{SuggestionID: v.SuggestionID, VoteCount: s.counts[v.SuggestionID]}, nil
}

func (s *mockVoteStore) Retract(_ context.Context, userID, suggestionID string) (vote.Tally, error) {
	key := [2]string{userID, suggestionID}
	if !s.votes[key] {
		return vote.Tally{}, vote.ErrNotVoted
	}
	delete(s.votes, key)
	s.counts[suggestionID]--
	return vote.Tally{SuggestionID: suggestionID, VoteCount: s.counts[suggestionID]}, nil
}

// --- Mock mailer ---

type sentMail struct {
	Kind, To, Name, Secret string
}

type mockMailer struct {
	sent []sentMail
	err  error
}

func (m *mockMailer) SendReset(_ context.Context, to, name, token string) error {
	m.sent = append(m.sent, sentMail{"reset", to, name, token})
	return m.err
}

func (m *mockMailer) SendWelcome(_ context.Context, to, name, password string) error {
	m.sent = append(m.sent, sentMail{"welcome", to, name, password})
	return m.err
}

func (m *mockMailer) SendInvite(_ context.Context, to, name, token string) error {
	m.sent = append(m.sent, sentMail{"invite", to, name, token})
	return m.err
}

var errMailDown = errors.New("mail provider down")

// profileWithPassword builds an active profile with a hashed password.
func profileWithPassword(id, email, role, password string) profile.Profile {
	p := profile.Profile{ID: id, Email: email, FullName: "User " + id, Role: role, IsActive: true, CreatedAt: fixedNow, UpdatedAt: fixedNow}
	if password != "" {
		if err := p.SetPassword(password); err != nil {
			panic(err)
		}
	}
	return p
}
