package api

import "shareit/internal/models"

type UserDto struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CommentDto struct {
	ID         int64           `json:"id"`
	Text       string          `json:"text"`
	AuthorName string          `json:"authorName"`
	Created    models.DateTime `json:"created"`
}

type ItemDto struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Available   bool         `json:"available"`
	HostID      int64        `json:"hostId"`
	RequestID   *int64       `json:"requestId"`
	Comments    []CommentDto `json:"comments"`
	LastBooking *BookingDto  `json:"lastBooking"`
	NextBooking *BookingDto  `json:"nextBooking"`
}

type BookingDto struct {
	ID     int64                `json:"id"`
	Booker *UserDto             `json:"booker,omitempty"`
	ItemID int64                `json:"itemId"`
	Item   *ItemDto             `json:"item,omitempty"`
	Start  models.DateTime      `json:"start"`
	End    models.DateTime      `json:"end"`
	Status models.BookingStatus `json:"status"`
}

type ItemRequestDto struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Created     models.DateTime `json:"created"`
	Items       []ItemDto       `json:"items"`
	UserID      int64           `json:"userId"`
}

// Входящие тела запросов: поля-указатели отличают "не передано" от нулевого значения.

type userInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type itemInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
	RequestID   *int64  `json:"requestId"`
}

type bookingInput struct {
	ItemID *int64           `json:"itemId"`
	Start  *models.DateTime `json:"start"`
	End    *models.DateTime `json:"end"`
}

type commentInput struct {
	Text string `json:"text"`
}

type requestInput struct {
	Description string `json:"description"`
}

func toUserDto(u *models.User) UserDto {
	return UserDto{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toUserDtos(users []*models.User) []UserDto {
	out := make([]UserDto, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDto(u))
	}
	return out
}

func toItemDto(item *models.Item) ItemDto {
	return ItemDto{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		HostID:      item.HostID,
		RequestID:   item.RequestID,
		Comments:    []CommentDto{},
	}
}

func toItemDtos(items []*models.Item) []ItemDto {
	out := make([]ItemDto, 0, len(items))
	for _, item := range items {
		out = append(out, toItemDto(item))
	}
	return out
}

func toItemDetailsDto(d *models.ItemDetails) ItemDto {
	dto := toItemDto(&d.Item)
	for i := range d.Comments {
		dto.Comments = append(dto.Comments, toCommentDto(&d.Comments[i]))
	}
	if d.LastBooking != nil {
		b := toBookingDto(d.LastBooking)
		dto.LastBooking = &b
	}
	if d.NextBooking != nil {
		b := toBookingDto(d.NextBooking)
		dto.NextBooking = &b
	}
	return dto
}

func toItemDetailsDtos(details []*models.ItemDetails) []ItemDto {
	out := make([]ItemDto, 0, len(details))
	for _, d := range details {
		out = append(out, toItemDetailsDto(d))
	}
	return out
}

func toCommentDto(c *models.Comment) CommentDto {
	return CommentDto{
		ID:         c.ID,
		Text:       c.Text,
		AuthorName: c.AuthorName,
		Created:    models.NewDateTime(c.Created),
	}
}

func toBookingDto(b *models.Booking) BookingDto {
	dto := BookingDto{
		ID:     b.ID,
		ItemID: b.ItemID,
		Start:  models.NewDateTime(b.Start),
		End:    models.NewDateTime(b.End),
		Status: b.Status,
	}
	if b.Booker != nil {
		u := toUserDto(b.Booker)
		dto.Booker = &u
	}
	if b.Item != nil {
		item := toItemDto(b.Item)
		dto.Item = &item
	}
	return dto
}

func toBookingDtos(bookings []*models.Booking) []BookingDto {
	out := make([]BookingDto, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingDto(b))
	}
	return out
}

func toRequestDto(d *models.RequestDetails) ItemRequestDto {
	dto := ItemRequestDto{
		ID:          d.Request.ID,
		Description: d.Request.Description,
		Created:     models.NewDateTime(d.Request.Created),
		UserID:      d.Request.UserID,
		Items:       make([]ItemDto, 0, len(d.Items)),
	}
	for i := range d.Items {
		dto.Items = append(dto.Items, toItemDto(&d.Items[i]))
	}
	return dto
}

func toRequestDtos(details []*models.RequestDetails) []ItemRequestDto {
	out := make([]ItemRequestDto, 0, len(details))
	for _, d := range details {
		out = append(out, toRequestDto(d))
	}
	return out
}
