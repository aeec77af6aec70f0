package client

import (
	"github.com/dmitrijs2005/eventfeed/internal/client/models"
	"github.com/dmitrijs2005/eventfeed/internal/rpc"
)

func eventFromRPC(e rpc.Event) models.Event {
	hobbies := e.Hobbies
	if hobbies == nil {
		hobbies = []string{}
	}
	return models.Event{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Image:       e.Image,
		CreatorID:   e.CreatorID,
		Official:    e.Official != 0,
		Hobbies:     hobbies,
	}
}

// EventFromRPC converts a wire event; the push subscriber uses it too.
func EventFromRPC(e rpc.Event) models.Event {
	return eventFromRPC(e)
}

func imageToRPC(img *models.ImageUpload) *rpc.Image {
	if img == nil {
		return nil
	}
	return &rpc.Image{Filename: img.Filename, ContentType: img.ContentType, Data: img.Data}
}
