package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

type memoryData struct {
	users    map[int64]models.User
	items    map[int64]models.Item
	bookings map[int64]models.Booking
	comments map[int64]models.Comment
	requests map[int64]models.ItemRequest
	links    map[int64]models.RequestItem
	seq      map[string]int64
}

func newMemoryData() *memoryData {
	return &memoryData{
		users:    make(map[int64]models.User),
		items:    make(map[int64]models.Item),
		bookings: make(map[int64]models.Booking),
		comments: make(map[int64]models.Comment),
		requests: make(map[int64]models.ItemRequest),
		links:    make(map[int64]models.RequestItem),
		seq:      make(map[string]int64),
	}
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (d *memoryData) clone() *memoryData {
	return &memoryData{
		users:    cloneMap(d.users),
		items:    cloneMap(d.items),
		bookings: cloneMap(d.bookings),
		comments: cloneMap(d.comments),
		requests: cloneMap(d.requests),
		links:    cloneMap(d.links),
		seq:      cloneMap(d.seq),
	}
}

func (d *memoryData) nextID(table string) int64 {
	d.seq[table]++
	return d.seq[table]
}

// MemoryRepository keeps everything in maps. Used by tests and by database.driver=memory.
type MemoryRepository struct {
	mu     *sync.Mutex
	data   *memoryData
	locked bool
}

var _ domain.Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{mu: &sync.Mutex{}, data: newMemoryData()}
}

func (r *MemoryRepository) lock() func() {
	if r.locked {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

// WithinTx holds the lock for the whole of fn and restores the snapshot if fn fails.
func (r *MemoryRepository) WithinTx(ctx context.Context, fn func(tx domain.Repository) error) error {
	if r.locked {
		return fn(r)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := r.data.clone()
	tx := &MemoryRepository{mu: r.mu, data: r.data, locked: true}
	if err := fn(tx); err != nil {
		*r.data = *snapshot
		return err
	}
	return nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *MemoryRepository) Close() error {
	return nil
}

// users

func (r *MemoryRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	defer r.lock()()

	users := make([]*models.User, 0, len(r.data.users))
	for _, u := range r.data.users {
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *MemoryRepository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	defer r.lock()()

	u, ok := r.data.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	defer r.lock()()

	for _, u := range r.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryRepository) emailTaken(email string, exceptID int64) bool {
	for _, u := range r.data.users {
		if u.ID != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) CreateUser(ctx context.Context, user *models.User) error {
	defer r.lock()()

	if r.emailTaken(user.Email, 0) {
		return domain.ErrDuplicateEmail
	}
	user.ID = r.data.nextID("users")
	r.data.users[user.ID] = *user
	return nil
}

func (r *MemoryRepository) UpdateUser(ctx context.Context, user *models.User) error {
	defer r.lock()()

	if _, ok := r.data.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return domain.ErrDuplicateEmail
	}
	r.data.users[user.ID] = *user
	return nil
}

// DeleteUser removes the user with its items, comments, bookings and requests.
func (r *MemoryRepository) DeleteUser(ctx context.Context, id int64) error {
	defer r.lock()()

	if _, ok := r.data.users[id]; !ok {
		return domain.ErrNotFound
	}

	for itemID, item := range r.data.items {
		if item.HostID == id {
			r.deleteItemCascade(itemID)
		}
	}
	for cid, c := range r.data.comments {
		if c.AuthorID == id {
			delete(r.data.comments, cid)
		}
	}
	for bid, b := range r.data.bookings {
		if b.BookerID == id {
			delete(r.data.bookings, bid)
		}
	}
	for rid, req := range r.data.requests {
		if req.UserID != id {
			continue
		}
		for itemID, item := range r.data.items {
			if item.RequestID != nil && *item.RequestID == rid {
				item.RequestID = nil
				r.data.items[itemID] = item
			}
		}
		for lid, link := range r.data.links {
			if link.RequestID == rid {
				delete(r.data.links, lid)
			}
		}
		delete(r.data.requests, rid)
	}

	delete(r.data.users, id)
	return nil
}

// items

func (r *MemoryRepository) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	defer r.lock()()

	item, ok := r.data.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyItem(item), nil
}

func (r *MemoryRepository) ListItemsByHost(ctx context.Context, hostID int64) ([]*models.Item, error) {
	defer r.lock()()

	return r.filterItems(func(item models.Item) bool { return item.HostID == hostID }), nil
}

func (r *MemoryRepository) SearchAvailableItems(ctx context.Context, text string) ([]*models.Item, error) {
	defer r.lock()()

	needle := strings.ToLower(text)
	return r.filterItems(func(item models.Item) bool {
		return item.Available &&
			(strings.Contains(strings.ToLower(item.Name), needle) ||
				strings.Contains(strings.ToLower(item.Description), needle))
	}), nil
}

func (r *MemoryRepository) filterItems(keep func(models.Item) bool) []*models.Item {
	var items []*models.Item
	for _, item := range r.data.items {
		if keep(item) {
			items = append(items, copyItem(item))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (r *MemoryRepository) CreateItem(ctx context.Context, item *models.Item) error {
	defer r.lock()()

	item.ID = r.data.nextID("items")
	r.data.items[item.ID] = *copyItem(*item)
	return nil
}

func (r *MemoryRepository) UpdateItem(ctx context.Context, item *models.Item) error {
	defer r.lock()()

	stored, ok := r.data.items[item.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Name = item.Name
	stored.Description = item.Description
	stored.Available = item.Available
	r.data.items[item.ID] = stored
	return nil
}

func (r *MemoryRepository) DeleteItem(ctx context.Context, id int64) error {
	defer r.lock()()

	if _, ok := r.data.items[id]; !ok {
		return domain.ErrNotFound
	}
	r.deleteItemCascade(id)
	return nil
}

func (r *MemoryRepository) deleteItemCascade(id int64) {
	for bid, b := range r.data.bookings {
		if b.ItemID == id {
			delete(r.data.bookings, bid)
		}
	}
	for cid, c := range r.data.comments {
		if c.ItemID == id {
			delete(r.data.comments, cid)
		}
	}
	for lid, link := range r.data.links {
		if link.ItemID == id {
			delete(r.data.links, lid)
		}
	}
	delete(r.data.items, id)
}

func copyItem(item models.Item) *models.Item {
	if item.RequestID != nil {
		id := *item.RequestID
		item.RequestID = &id
	}
	return &item
}

// bookings

// hydrate fills Booker and Item the same way the SQL join does.
func (r *MemoryRepository) hydrate(b models.Booking) *models.Booking {
	booker := r.data.users[b.BookerID]
	b.Booker = &booker
	b.Item = copyItem(r.data.items[b.ItemID])
	return &b
}

func (r *MemoryRepository) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	defer r.lock()()

	b, ok := r.data.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.hydrate(b), nil
}

func (r *MemoryRepository) CreateBooking(ctx context.Context, booking *models.Booking) error {
	defer r.lock()()

	booking.ID = r.data.nextID("bookings")
	stored := *booking
	stored.Booker, stored.Item = nil, nil
	r.data.bookings[booking.ID] = stored
	return nil
}

func (r *MemoryRepository) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	defer r.lock()()

	b, ok := r.data.bookings[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Status = status
	r.data.bookings[id] = b
	return nil
}

func (r *MemoryRepository) filterBookings(keep func(models.Booking) bool) []*models.Booking {
	var bookings []*models.Booking
	for _, b := range r.data.bookings {
		if keep(b) {
			bookings = append(bookings, r.hydrate(b))
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings
}

func (r *MemoryRepository) listByState(state models.BookingState, now time.Time, owns func(models.Booking) bool) ([]*models.Booking, error) {
	if !knownState(state) {
		return nil, domain.ErrValidation
	}
	return r.filterBookings(func(b models.Booking) bool {
		return owns(b) && state.Matches(&b, now)
	}), nil
}

func knownState(state models.BookingState) bool {
	for _, s := range models.BookingStates {
		if s == state {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) ListBookingsByBooker(ctx context.Context, bookerID int64, state models.BookingState, now time.Time) ([]*models.Booking, error) {
	defer r.lock()()

	return r.listByState(state, now, func(b models.Booking) bool { return b.BookerID == bookerID })
}

func (r *MemoryRepository) ListBookingsByOwner(ctx context.Context, hostID int64, state models.BookingState, now time.Time) ([]*models.Booking, error) {
	defer r.lock()()

	return r.listByState(state, now, func(b models.Booking) bool {
		item, ok := r.data.items[b.ItemID]
		return ok && item.HostID == hostID
	})
}

func (r *MemoryRepository) ListPastApprovedBookings(ctx context.Context, itemID, bookerID int64, now time.Time) ([]*models.Booking, error) {
	defer r.lock()()

	ts := now.Unix()
	return r.filterBookings(func(b models.Booking) bool {
		return b.ItemID == itemID && b.BookerID == bookerID && b.IsApproved() && b.End.Unix() < ts
	}), nil
}

func (r *MemoryRepository) FindLastBooking(ctx context.Context, itemID int64, before time.Time) (*models.Booking, error) {
	defer r.lock()()

	ts := before.Unix()
	var last *models.Booking
	for _, b := range r.data.bookings {
		if b.ItemID != itemID || !b.IsApproved() || b.End.Unix() >= ts {
			continue
		}
		if last == nil || b.End.Unix() > last.End.Unix() || (b.End.Unix() == last.End.Unix() && b.ID > last.ID) {
			last = r.hydrate(b)
		}
	}
	return last, nil
}

func (r *MemoryRepository) FindNextBooking(ctx context.Context, itemID int64, after time.Time) (*models.Booking, error) {
	defer r.lock()()

	ts := after.Unix()
	var next *models.Booking
	for _, b := range r.data.bookings {
		if b.ItemID != itemID || !b.IsApproved() || b.Start.Unix() <= ts {
			continue
		}
		if next == nil || b.Start.Unix() < next.Start.Unix() || (b.Start.Unix() == next.Start.Unix() && b.ID < next.ID) {
			next = r.hydrate(b)
		}
	}
	return next, nil
}

// comments

func (r *MemoryRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	defer r.lock()()

	comment.ID = r.data.nextID("comments")
	r.data.comments[comment.ID] = *comment
	return nil
}

func (r *MemoryRepository) ListCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	defer r.lock()()

	var comments []*models.Comment
	for _, c := range r.data.comments {
		if c.ItemID != itemID {
			continue
		}
		c.AuthorName = r.data.users[c.AuthorID].Name
		comments = append(comments, &c)
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

// requests

func (r *MemoryRepository) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	defer r.lock()()

	req, ok := r.data.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &req, nil
}

func (r *MemoryRepository) CreateRequest(ctx context.Context, req *models.ItemRequest) error {
	defer r.lock()()

	req.ID = r.data.nextID("requests")
	r.data.requests[req.ID] = *req
	return nil
}

func (r *MemoryRepository) ListRequestsByUser(ctx context.Context, userID int64) ([]*models.ItemRequest, error) {
	defer r.lock()()

	return r.filterRequests(func(req models.ItemRequest) bool { return req.UserID == userID }), nil
}

func (r *MemoryRepository) ListRequestsExceptUser(ctx context.Context, userID int64) ([]*models.ItemRequest, error) {
	defer r.lock()()

	return r.filterRequests(func(req models.ItemRequest) bool { return req.UserID != userID }), nil
}

// filterRequests orders newest first, like the SQL store.
func (r *MemoryRepository) filterRequests(keep func(models.ItemRequest) bool) []*models.ItemRequest {
	var requests []*models.ItemRequest
	for _, req := range r.data.requests {
		if keep(req) {
			requests = append(requests, &req)
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		ci, cj := requests[i].Created.Unix(), requests[j].Created.Unix()
		if ci != cj {
			return ci > cj
		}
		return requests[i].ID > requests[j].ID
	})
	return requests
}

func (r *MemoryRepository) LinkRequestItem(ctx context.Context, link *models.RequestItem) error {
	defer r.lock()()

	link.ID = r.data.nextID("request_items")
	r.data.links[link.ID] = *link
	return nil
}

func (r *MemoryRepository) ListRequestItems(ctx context.Context, requestID int64) ([]*models.Item, error) {
	defer r.lock()()

	var links []models.RequestItem
	for _, link := range r.data.links {
		if link.RequestID == requestID {
			links = append(links, link)
		}
	}
	sort.Slice(links, func(i, j int) bool { return links[i].ID < links[j].ID })

	var items []*models.Item
	for _, link := range links {
		if item, ok := r.data.items[link.ItemID]; ok {
			items = append(items, copyItem(item))
		}
	}
	return items, nil
}
