package visdrone2coco

// The VisDrone object categories.

// IgnoredRegions is the VisDrone class index for ignored regions. It is never emitted.
const IgnoredRegions = 0

// Categories are the VisDrone class names, in order, for class indexes 1..len(Categories).
var Categories = [...]string{
	"pedestrian",      // 1
	"people",          // 2
	"bicycle",         // 3
	"car",             // 4
	"van",             // 5
	"truck",           // 6
	"tricycle",        // 7
	"awning-tricycle", // 8
	"bus",             // 9
	"motor",           // 10
	"others",          // 11
}

const categorySupercategory = "none"

// ToCategories returns the COCO categories for the VisDrone classes. The ids are 1-based
// positions in Categories.
func ToCategories() []Category {
	categories := make([]Category, len(Categories))
	for i, name := range Categories {
		categories[i] = Category{ID: i + 1, Name: name, Supercategory: categorySupercategory}
	}
	return categories
}

// ValidCategory reports whether id refers to one of the emitted categories.
func ValidCategory(id int) bool {
	return id >= 1 && id <= len(Categories)
}

// CategoryName returns the name for the category id, or "" if the id is not valid.
func CategoryName(id int) string {
	if !ValidCategory(id) {
		return ""
	}
	return Categories[id-1]
}
