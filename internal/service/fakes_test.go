package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"Task_Mania/internal/model"
	"Task_Mania/internal/repository/redis"
)

// memCommunityRepo mirrors the guarded update semantics of the Mongo
// repository: every set mutation is atomic and reports ErrNoChange when its
// precondition fails, including when the document is missing.
type memCommunityRepo struct {
	mu      sync.Mutex
	docs    map[string]model.Community
	saveErr error
}

func newMemCommunityRepo() *memCommunityRepo {
	return &memCommunityRepo{docs: make(map[string]model.Community)}
}

func cloneCommunity(c model.Community) *model.Community {
	c.MemberIDs = slices.Clone(c.MemberIDs)
	c.AdminIDs = slices.Clone(c.AdminIDs)
	return &c
}

func (r *memCommunityRepo) FindByID(_ context.Context, id string) (*model.Community, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.docs[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return cloneCommunity(c), nil
}

func (r *memCommunityRepo) filter(keep func(c *model.Community) bool) []model.Community {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Community, 0)
	for _, c := range r.docs {
		if keep(&c) {
			out = append(out, *cloneCommunity(c))
		}
	}
	return out
}

func (r *memCommunityRepo) FindAll(context.Context) ([]model.Community, error) {
	return r.filter(func(*model.Community) bool { return true }), nil
}

func (r *memCommunityRepo) FindByCreatorID(_ context.Context, id string) ([]model.Community, error) {
	return r.filter(func(c *model.Community) bool { return c.CreatorID == id }), nil
}

func (r *memCommunityRepo) FindByMemberID(_ context.Context, id string) ([]model.Community, error) {
	return r.filter(func(c *model.Community) bool { return c.HasMember(id) }), nil
}

func (r *memCommunityRepo) FindByAdminID(_ context.Context, id string) ([]model.Community, error) {
	return r.filter(func(c *model.Community) bool { return c.HasAdmin(id) }), nil
}

func (r *memCommunityRepo) FindByCategory(_ context.Context, category string) ([]model.Community, error) {
	return r.filter(func(c *model.Community) bool { return c.Category == category }), nil
}

func (r *memCommunityRepo) FindPublic(context.Context) ([]model.Community, error) {
	return r.filter(func(c *model.Community) bool { return !c.IsPrivate }), nil
}

func (r *memCommunityRepo) Save(_ context.Context, c *model.Community) (*model.Community, error) {
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	r.docs[c.ID.Hex()] = *cloneCommunity(*c)
	return cloneCommunity(*c), nil
}

func (r *memCommunityRepo) UpdateProfile(_ context.Context, id string, p model.CommunityPatch, now time.Time) (*model.Community, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.docs[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	c.Name, c.Description, c.Category, c.IsPrivate = p.Name, p.Description, p.Category, p.IsPrivate
	c.UpdatedAt = now
	r.docs[id] = c
	return cloneCommunity(c), nil
}

func (r *memCommunityRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return model.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *memCommunityRepo) mutate(id string, apply func(c *model.Community) bool, now time.Time) (*model.Community, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.docs[id]
	if !ok {
		return nil, model.ErrNoChange
	}
	c = *cloneCommunity(c)
	if !apply(&c) {
		return nil, model.ErrNoChange
	}
	c.UpdatedAt = now
	r.docs[id] = c
	return cloneCommunity(c), nil
}

func (r *memCommunityRepo) AddMember(_ context.Context, id, uid string, now time.Time) (*model.Community, error) {
	return r.mutate(id, func(c *model.Community) bool {
		if c.HasMember(uid) {
			return false
		}
		c.MemberIDs = append(c.MemberIDs, uid)
		return true
	}, now)
}

func (r *memCommunityRepo) RemoveMember(_ context.Context, id, uid string, now time.Time) (*model.Community, error) {
	return r.mutate(id, func(c *model.Community) bool {
		if c.CreatorID == uid || (!c.HasMember(uid) && !c.HasAdmin(uid)) {
			return false
		}
		c.MemberIDs = model.RemoveFromSet(c.MemberIDs, uid)
		c.AdminIDs = model.RemoveFromSet(c.AdminIDs, uid)
		return true
	}, now)
}

func (r *memCommunityRepo) AddAdmin(_ context.Context, id, uid string, now time.Time) (*model.Community, error) {
	return r.mutate(id, func(c *model.Community) bool {
		if !c.HasMember(uid) || c.HasAdmin(uid) {
			return false
		}
		c.AdminIDs = append(c.AdminIDs, uid)
		return true
	}, now)
}

func (r *memCommunityRepo) RemoveAdmin(_ context.Context, id, uid string, now time.Time) (*model.Community, error) {
	return r.mutate(id, func(c *model.Community) bool {
		if c.CreatorID == uid || !c.HasAdmin(uid) {
			return false
		}
		c.AdminIDs = model.RemoveFromSet(c.AdminIDs, uid)
		return true
	}, now)
}

type memEventSink struct {
	mu     sync.Mutex
	events []model.EventOutbox
	err    error
}

func (s *memEventSink) Add(_ context.Context, ev *model.EventOutbox) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *ev)
	return nil
}

func (s *memEventSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.EventType
	}
	return out
}

var errBoom = errors.New("boom")

type memPostRepo struct {
	mu    sync.Mutex
	posts map[string]*model.Post
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: make(map[string]*model.Post)}
}

func clonePost(p *model.Post) *model.Post {
	c := *p
	c.LikedBy = slices.Clone(p.LikedBy)
	c.MediaURLs = slices.Clone(p.MediaURLs)
	return &c
}

func (r *memPostRepo) Create(_ context.Context, p *model.Post) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.posts[p.ID.Hex()] = clonePost(p)
	return clonePost(p), nil
}

func (r *memPostRepo) FindByID(_ context.Context, id string) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return clonePost(p), nil
}

func (r *memPostRepo) filter(keep func(p *model.Post) bool, page model.Page) []model.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Post, 0)
	for _, p := range r.posts {
		if keep(p) {
			out = append(out, *clonePost(p))
		}
	}
	slices.SortFunc(out, func(a, b model.Post) int { return b.CreatedAt.Compare(a.CreatedAt) })
	start := int(page.Offset())
	if start >= len(out) {
		return []model.Post{}
	}
	return out[start:min(start+page.Size, len(out))]
}

func (r *memPostRepo) FindByUserID(_ context.Context, userID string, page model.Page) ([]model.Post, error) {
	return r.filter(func(p *model.Post) bool { return p.UserID == userID }, page), nil
}

func (r *memPostRepo) FindByUserIDs(_ context.Context, ids []string, page model.Page) ([]model.Post, error) {
	return r.filter(func(p *model.Post) bool { return slices.Contains(ids, p.UserID) }, page), nil
}

func (r *memPostRepo) FindBySkillCategory(_ context.Context, category string, page model.Page) ([]model.Post, error) {
	return r.filter(func(p *model.Post) bool { return p.SkillCategory == category }, page), nil
}

func (r *memPostRepo) FindByCommunityID(_ context.Context, communityID string, page model.Page) ([]model.Post, error) {
	return r.filter(func(p *model.Post) bool { return p.CommunityID == communityID }, page), nil
}

func (r *memPostRepo) UpdateContent(_ context.Context, p *model.Post) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.posts[p.ID.Hex()]
	if !ok {
		return nil, model.ErrNotFound
	}
	cur.Title, cur.Description, cur.SkillCategory = p.Title, p.Description, p.SkillCategory
	cur.MediaURLs, cur.MediaType, cur.UpdatedAt = slices.Clone(p.MediaURLs), p.MediaType, p.UpdatedAt
	return clonePost(cur), nil
}

func (r *memPostRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return model.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *memPostRepo) AddLike(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return false, model.ErrNotFound
	}
	if slices.Contains(p.LikedBy, userID) {
		return false, nil
	}
	p.LikedBy = append(p.LikedBy, userID)
	return true, nil
}

func (r *memPostRepo) RemoveLike(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return false, model.ErrNotFound
	}
	if !slices.Contains(p.LikedBy, userID) {
		return false, nil
	}
	p.LikedBy = model.RemoveFromSet(p.LikedBy, userID)
	return true, nil
}

func (r *memPostRepo) IsLiked(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return false, model.ErrNotFound
	}
	return slices.Contains(p.LikedBy, userID), nil
}

func (r *memPostRepo) CountLikes(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return 0, model.ErrNotFound
	}
	return int64(len(p.LikedBy)), nil
}

type memCommentRepo struct {
	mu       sync.Mutex
	comments map[string]*model.Comment
}

func newMemCommentRepo() *memCommentRepo {
	return &memCommentRepo{comments: make(map[string]*model.Comment)}
}

func (r *memCommentRepo) Create(_ context.Context, c *model.Comment) (*model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	cp := *c
	r.comments[c.ID.Hex()] = &cp
	return c, nil
}

func (r *memCommentRepo) FindByID(_ context.Context, id string) (*model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCommentRepo) FindByPostID(_ context.Context, postID string, _ model.Page) ([]model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Comment, 0)
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	slices.SortFunc(out, func(a, b model.Comment) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (r *memCommentRepo) CountByPostID(ctx context.Context, postID string) (int64, error) {
	list, _ := r.FindByPostID(ctx, postID, model.Page{})
	return int64(len(list)), nil
}

func (r *memCommentRepo) UpdateContent(_ context.Context, id, content string, now time.Time) (*model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	c.Content, c.UpdatedAt = content, now
	cp := *c
	return &cp, nil
}

func (r *memCommentRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return model.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *memCommentRepo) DeleteByPostID(_ context.Context, postID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, c := range r.comments {
		if c.PostID == postID {
			delete(r.comments, id)
			n++
		}
	}
	return n, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUserRepo(users ...*model.User) *memUserRepo {
	r := &memUserRepo{users: make(map[string]*model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.users {
		if x.Username == u.Username || x.Email == u.Email {
			return model.ErrConflict
		}
	}
	if u.ID == "" {
		u.ID = "id-" + u.Username
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) find(match func(u *model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (r *memUserRepo) FindByUsername(_ context.Context, name string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == name || u.Email == name })
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id })
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return model.ErrNotFound
	}
	u.Password = hash
	return nil
}

func (r *memUserRepo) UpsertOAuth(ctx context.Context, u *model.User) (*model.User, error) {
	if existing, err := r.FindByEmail(ctx, u.Email); err == nil {
		r.mu.Lock()
		stored := r.users[existing.ID]
		stored.Name, stored.ProfileImage = u.Name, u.ProfileImage
		r.mu.Unlock()
		return r.FindByID(ctx, existing.ID)
	}
	if err := r.Create(ctx, u); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, u.ID)
}

type memFollowRepo struct {
	mu   sync.Mutex
	rels map[[2]string]bool
}

func newMemFollowRepo() *memFollowRepo {
	return &memFollowRepo{rels: make(map[[2]string]bool)}
}

func (r *memFollowRepo) Follow(_ context.Context, a, b string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rels[[2]string{a, b}] {
		return false, nil
	}
	r.rels[[2]string{a, b}] = true
	return true, nil
}

func (r *memFollowRepo) Unfollow(_ context.Context, a, b string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.rels[[2]string{a, b}] {
		return false, nil
	}
	delete(r.rels, [2]string{a, b})
	return true, nil
}

func (r *memFollowRepo) IsFollowing(_ context.Context, a, b string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rels[[2]string{a, b}], nil
}

func (r *memFollowRepo) FolloweeIDs(_ context.Context, a string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0)
	for k := range r.rels {
		if k[0] == a {
			out = append(out, k[1])
		}
	}
	return out, nil
}

func (r *memFollowRepo) ListFollowings(context.Context, string, uint64, int) ([]model.Follow, uint64, error) {
	return nil, 0, nil
}

func (r *memFollowRepo) ListFollowers(context.Context, string, uint64, int) ([]model.Follow, uint64, error) {
	return nil, 0, nil
}

type memTokens struct {
	mu      sync.Mutex
	tokens  map[string]string
	refresh map[string]string
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: make(map[string]string), refresh: make(map[string]string)}
}

func (m *memTokens) SaveRefreshToken(_ context.Context, id, tok string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh[id] = tok
	return nil
}

func (m *memTokens) RotateRefreshToken(_ context.Context, id, old, next string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.refresh[id]; !ok || cur != old {
		return redis.ErrTokenNotFound
	}
	m.refresh[id] = next
	return nil
}

func (m *memTokens) AddUserToken(_ context.Context, id, tok string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[id] = tok
	return nil
}

func (m *memTokens) GetUserToken(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tok, ok := m.tokens[id]
	if !ok {
		return "", redis.ErrTokenNotFound
	}
	return tok, nil
}

func (m *memTokens) ExtendUserToken(context.Context, string) error { return nil }

func (m *memTokens) DeleteUserToken(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, id)
	delete(m.refresh, id)
	return nil
}

type memCodes struct {
	mu        sync.Mutex
	pending   map[string]string
	confirmed map[string]string
}

func newMemCodes() *memCodes {
	return &memCodes{pending: map[string]string{}, confirmed: map[string]string{}}
}

func (m *memCodes) SavePending(_ context.Context, scope, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[scope+email] = code
	return nil
}

func (m *memCodes) Confirm(_ context.Context, scope, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.pending[scope+email]
	if !ok {
		return redis.ErrCodeNotQueued
	}
	delete(m.pending, scope+email)
	m.confirmed[scope+email] = code
	return nil
}

func (m *memCodes) DeletePending(_ context.Context, scope, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, scope+email)
	return nil
}

func (m *memCodes) Consume(_ context.Context, scope, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if got, ok := m.confirmed[scope+email]; !ok || got != code {
		return redis.ErrCodeNotFound
	}
	delete(m.confirmed, scope+email)
	return nil
}

type sentMail struct{ to, subject, body string }

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type memLikeCache struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newMemLikeCache() *memLikeCache { return &memLikeCache{counts: map[string]int64{}} }

func (c *memLikeCache) adjust(postID string, d int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.counts[postID]; ok {
		c.counts[postID] = max(0, v+d)
	}
}

func (c *memLikeCache) AddLike(_ context.Context, _, postID string) error {
	c.adjust(postID, 1)
	return nil
}

func (c *memLikeCache) RemoveLike(_ context.Context, _, postID string) error {
	c.adjust(postID, -1)
	return nil
}

func (c *memLikeCache) IsLikedCached(context.Context, string, string) (bool, bool, error) {
	return false, false, nil
}

func (c *memLikeCache) WarmIsLiked(context.Context, string, string, bool) {}

func (c *memLikeCache) GetLikeCountCached(_ context.Context, postID string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.counts[postID]
	return v, ok, nil
}

func (c *memLikeCache) SetLikeCount(_ context.Context, postID string, n int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[postID] = n
	return nil
}

func (c *memLikeCache) DeleteCount(_ context.Context, postID string, _ ...time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, postID)
	return nil
}

type memLocker struct {
	mu    sync.Mutex
	held  map[string]string
	calls int
}

func newMemLocker() *memLocker { return &memLocker{held: map[string]string{}} }

func (l *memLocker) Acquire(_ context.Context, key, token string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if _, ok := l.held[key]; ok {
		return false, nil
	}
	l.held[key] = token
	return true, nil
}

func (l *memLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}
