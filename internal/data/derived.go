package data

// AverageRating returns the mean rating of reviews, or 0 when there are none.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	return float64(total) / float64(len(reviews))
}

// PrimaryImage returns the first image flagged primary, otherwise the first
// image, otherwise placeholder.
func PrimaryImage(images []Image, placeholder Image) Image {
	for _, img := range images {
		if img.IsPrimary {
			return img
		}
	}
	if len(images) > 0 {
		return images[0]
	}
	return placeholder
}

// PlaceholderImage builds the sentinel image returned for properties with
// no images.
func PlaceholderImage(url string) Image {
	return Image{URL: url, AltText: "No image available"}
}

// decorate fills the fields derived from the loaded relations.
func (p *Property) decorate(placeholder Image) {
	p.AverageRating = AverageRating(p.Reviews)
	p.PrimaryImage = PrimaryImage(p.Images, placeholder)
	if p.Images == nil {
		p.Images = []Image{}
	}
	if p.Reviews == nil {
		p.Reviews = []Review{}
	}
}
