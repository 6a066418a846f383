package handler

import (
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/rs/xid"
	"github.com/skip2/go-qrcode"

	"github.com/hieudoan/gocamp/geocoder"
	"github.com/hieudoan/gocamp/imagestore"
	"github.com/hieudoan/gocamp/metrics"
	"github.com/hieudoan/gocamp/model"
	"github.com/hieudoan/gocamp/store"
	"github.com/hieudoan/gocamp/telegram"
	"github.com/hieudoan/gocamp/util"
)

type campgroundForm struct {
	Name        string `form:"name" validate:"required"`
	Price       string `form:"price" validate:"required"`
	Description string `form:"description" validate:"required"`
	Location    string `form:"location" validate:"required"`
}

// LandingPage handler
func LandingPage() echo.HandlerFunc {
	return func(c echo.Context) error {
		return render(c, http.StatusOK, "landing.html", "", nil)
	}
}

// Campgrounds handler renders the listing index, optionally filtered by a
// case-insensitive substring match on the name.
func Campgrounds(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		search := c.QueryParam("search")

		var campgrounds []model.Campground
		var err error
		var noMatch string

		if search != "" {
			campgrounds, err = db.SearchCampgrounds(search)
			if err == nil && len(campgrounds) < 1 {
				noMatch = "No campgrounds found, please try again."
			}
		} else {
			campgrounds, err = db.GetCampgrounds()
		}
		if err != nil {
			log.Error("Cannot fetch campgrounds from database: ", err)
			flashError(c, "Something went wrong...")
			return render(c, http.StatusOK, "campgrounds.html", "campgrounds", nil)
		}

		return render(c, http.StatusOK, "campgrounds.html", "campgrounds", map[string]interface{}{
			"campgrounds": campgrounds,
			"search":      search,
			"noMatch":     noMatch,
		})
	}
}

// NewCampgroundPage handler
func NewCampgroundPage() echo.HandlerFunc {
	return func(c echo.Context) error {
		return render(c, http.StatusOK, "campground_new.html", "campgrounds", nil)
	}
}

// CreateCampground handler uploads the submitted image, geocodes the
// location and persists the new listing.
func CreateCampground(db store.IStore, images imagestore.Store, geo geocoder.Geocoder) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := currentUser(c)

		form := new(campgroundForm)
		if err := c.Bind(form); err != nil || c.Validate(form) != nil {
			flashError(c, "All fields are required")
			return c.Redirect(http.StatusFound, "/campgrounds/new")
		}

		fileHeader, err := c.FormFile("image")
		if err != nil {
			flashError(c, "Please add an image of the campground")
			return c.Redirect(http.StatusFound, "/campgrounds/new")
		}

		image, err := uploadImage(c, images, fileHeader)
		if err != nil {
			log.Error("Cannot upload campground image: ", err)
			flashError(c, "Cannot upload the image, please try again later")
			return c.Redirect(http.StatusFound, "/campgrounds/new")
		}

		location, err := geo.Geocode(c.Request().Context(), form.Location)
		if err != nil {
			log.Warnf("Cannot geocode %q: %v", form.Location, err)
			// the image is already stored, do not leak it
			if err := images.Delete(c.Request().Context(), image.ID); err != nil {
				log.Warn("Cannot remove orphaned image: ", err)
			}
			flashError(c, "Unable to locate that address, please try again")
			return c.Redirect(http.StatusFound, "/campgrounds/new")
		}

		now := time.Now().UTC()
		campground := model.Campground{
			ID:          xid.New().String(),
			Name:        form.Name,
			Price:       form.Price,
			Description: form.Description,
			Image:       model.Image{ID: image.ID, URL: image.URL},
			Location:    location.FormattedAddress,
			Lat:         location.Lat,
			Lng:         location.Lng,
			Author:      model.Author{ID: user.ID, Username: user.Username},
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := db.SaveCampground(campground); err != nil {
			log.Error("Cannot save campground to database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/campgrounds/new")
		}
		log.Infof("Created campground %s by %s", campground.ID, user.Username)
		metrics.CampgroundsCreated.Inc()
		go telegram.NotifyNewCampground(campground.Name, user.Username,
			util.ResolveBaseURL()+"/campgrounds/"+campground.ID)

		flashSuccess(c, "Successfully added "+campground.Name)
		return c.Redirect(http.StatusFound, "/campgrounds")
	}
}

// Campground handler renders a single listing with its comments.
func Campground(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		campground, err := db.GetCampgroundByID(c.Param("id"))
		if err == store.ErrNotFound {
			flashError(c, "Campground not found")
			return c.Redirect(http.StatusFound, "/campgrounds")
		}
		if err != nil {
			log.Error("Cannot fetch campground from database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/campgrounds")
		}

		data := model.CampgroundData{Campground: campground}
		for _, commentID := range campground.CommentIDs {
			comment, err := db.GetCommentByID(commentID)
			if err != nil {
				// stale reference, the listing is still renderable
				log.Warnf("Cannot fetch comment %s: %v", commentID, err)
				continue
			}
			data.Comments = append(data.Comments, comment)
		}
		data.ShareQRCode = mapQRCode(campground)

		return render(c, http.StatusOK, "campground_show.html", "campgrounds", map[string]interface{}{
			"campgroundData": data,
		})
	}
}

// EditCampgroundPage handler
func EditCampgroundPage(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		campground, err := db.GetCampgroundByID(c.Param("id"))
		if err != nil {
			log.Error("Cannot fetch campground from database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/campgrounds")
		}
		return render(c, http.StatusOK, "campground_edit.html", "campgrounds", map[string]interface{}{
			"campground": campground,
		})
	}
}

// UpdateCampground handler. The stored record is re-fetched here so the
// existing image reference never travels through shared process state.
func UpdateCampground(db store.IStore, images imagestore.Store, geo geocoder.Geocoder) echo.HandlerFunc {
	return func(c echo.Context) error {
		campground, err := db.GetCampgroundByID(c.Param("id"))
		if err != nil {
			log.Error("Cannot fetch campground from database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/campgrounds")
		}

		form := new(campgroundForm)
		if err := c.Bind(form); err != nil || c.Validate(form) != nil {
			flashError(c, "All fields are required")
			return c.Redirect(http.StatusFound, "/campgrounds/"+campground.ID+"/edit")
		}

		// a freshly uploaded image replaces the stored one
		if fileHeader, err := c.FormFile("image"); err == nil {
			image, err := uploadImage(c, images, fileHeader)
			if err != nil {
				log.Error("Cannot upload campground image: ", err)
				flashError(c, "Cannot upload the image, please try again later")
				return c.Redirect(http.StatusFound, "/campgrounds/"+campground.ID+"/edit")
			}
			if campground.Image.ID != "" {
				if err := images.Delete(c.Request().Context(), campground.Image.ID); err != nil {
					log.Warnf("Cannot remove old image %s: %v", campground.Image.ID, err)
				}
			}
			campground.Image = model.Image{ID: image.ID, URL: image.URL}
		}

		if form.Location != campground.Location {
			location, err := geo.Geocode(c.Request().Context(), form.Location)
			if err != nil {
				log.Warnf("Cannot geocode %q: %v", form.Location, err)
				flashError(c, "Unable to locate that address, please try again")
				return c.Redirect(http.StatusFound, "/campgrounds/"+campground.ID+"/edit")
			}
			campground.Location = location.FormattedAddress
			campground.Lat = location.Lat
			campground.Lng = location.Lng
		}

		campground.Name = form.Name
		campground.Price = form.Price
		campground.Description = form.Description
		campground.UpdatedAt = time.Now().UTC()

		if err := db.SaveCampground(campground); err != nil {
			log.Error("Cannot save campground to database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/campgrounds")
		}

		flashSuccess(c, "Campground updated!")
		return c.Redirect(http.StatusFound, "/campgrounds/"+campground.ID)
	}
}

// DeleteCampground handler removes the listing, its comments and its image.
func DeleteCampground(db store.IStore, images imagestore.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		campground, err := db.GetCampgroundByID(c.Param("id"))
		if err != nil {
			log.Error("Cannot fetch campground from database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/campgrounds")
		}

		if err := db.DeleteCampground(campground.ID); err != nil {
			log.Error("Cannot delete campground from database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/campgrounds")
		}

		if campground.Image.ID != "" {
			if err := images.Delete(c.Request().Context(), campground.Image.ID); err != nil {
				log.Warnf("Cannot remove image %s: %v", campground.Image.ID, err)
			}
		}

		log.Infof("Removed campground %s", campground.ID)
		flashSuccess(c, "Campground removed!")
		return c.Redirect(http.StatusFound, "/campgrounds")
	}
}

func uploadImage(c echo.Context, images imagestore.Store, fileHeader *multipart.FileHeader) (imagestore.Image, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return imagestore.Image{}, err
	}
	defer file.Close()
	return images.Upload(c.Request().Context(), file, fileHeader.Filename)
}

// mapQRCode renders a base64 PNG data URI encoding the map link of a
// campground for the show page.
func mapQRCode(campground model.Campground) string {
	link := fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%f,%f",
		campground.Lat, campground.Lng)
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		log.Warn("Cannot generate QRCode: ", err)
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
