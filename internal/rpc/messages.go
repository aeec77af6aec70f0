package rpc

// Event is the wire form of a social event.
type Event struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Date        string   `json:"date"`
	Location    *string  `json:"location"`
	Image       *string  `json:"image"`
	CreatorID   int64    `json:"creator_id"`
	Official    int      `json:"official"`
	Hobbies     []string `json:"hobbies"`
}

// Image is an uploaded picture; Data is base64 on the wire.
type Image struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Bio      string `json:"bio,omitempty"`
}

type RegisterResponse struct {
	UserID int64 `json:"user_id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	UserID      int64  `json:"user_id"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type ListEventsRequest struct {
	Location string `json:"location,omitempty"`
	Hobby    string `json:"hobby,omitempty"`
	Official *bool  `json:"official,omitempty"`
	Cursor   string `json:"cursor,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type ListEventsResponse struct {
	Events     []Event `json:"events"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

type CreateEventRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Location    string   `json:"location"`
	Hobbies     []string `json:"hobbies"`
	Image       *Image   `json:"image,omitempty"`
}

type UpdateEventRequest struct {
	ID          int64   `json:"id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
	Location    *string `json:"location,omitempty"`
	Image       *Image  `json:"image,omitempty"`
}

type EventResponse struct {
	Event Event `json:"event"`
}

type DeleteEventRequest struct {
	ID int64 `json:"id"`
}

type DeleteEventResponse struct{}

type ListHobbiesRequest struct{}

type ListHobbiesResponse struct {
	Hobbies []string `json:"hobbies"`
}
