package application

import "errors"

// Store errors.
var (
	// ErrUnknownCategory indicates a category value other than visited or wishlist.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrPlaceNotFound indicates no place exists at the requested index.
	ErrPlaceNotFound = errors.New("place not found")

	// ErrStalePlace indicates the place at the requested index is not the one
	// the caller rendered; the list changed underneath it.
	ErrStalePlace = errors.New("place list changed, reload and try again")
)

// Submission validation errors. Each leaves stored state untouched.
var (
	ErrCategoryRequired      = errors.New("please select a valid category")
	ErrNameRequired          = errors.New("please enter a name for the place")
	ErrInvalidCoordinates    = errors.New("please enter valid latitude and longitude values")
	ErrVisitedDateNotPast    = errors.New(`for "Places You've Been", the date must be before the current date`)
	ErrWishlistDateNotFuture = errors.New(`for "Places You Want to Go", the date must be after the current date`)
)

// Photo errors.
var (
	ErrPhotoTooLarge      = errors.New("photo exceeds the upload size limit")
	ErrPhotoTooManyPixels = errors.New("photo resolution exceeds 40 megapixels")
	ErrUnsupportedPhoto   = errors.New("photo must be a png, jpeg, gif or webp image")
	ErrInvalidDataURL     = errors.New("photo is not a valid base64 data URL")
)

// IsValidationError reports whether err is a submission or photo error the
// user can fix by correcting the form.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrCategoryRequired, ErrNameRequired, ErrInvalidCoordinates,
		ErrVisitedDateNotPast, ErrWishlistDateNotFuture,
		ErrPhotoTooLarge, ErrPhotoTooManyPixels, ErrUnsupportedPhoto, ErrInvalidDataURL,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// UserMessage returns the innermost message of err, dropping the context
// prefixes added while it was wrapped, for showing next to the form.
func UserMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
