package poptravel

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidMetadata wraps all metadata validation failures.
var ErrInvalidMetadata = errors.New("poptravel: invalid metadata")

// Metadata is the category-specific half of a content record. Each category
// has exactly one variant; the form renders and parses only the variant of
// the currently selected category, so values typed under another category
// never survive a save.
type Metadata interface {
	Category() Category
	Validate() error
}

// Enum values offered by the admin form selects. The French labels are the
// stored values, matching the original content table.
var (
	GuideDifficulties   = []string{"Facile", "Modéré", "Difficile"}
	StoryMoods          = []string{"Aventure", "Émotionnel", "Drôle", "Inspirant", "Relaxant"}
	TravelTypes         = []string{"Solo", "Couple", "Amis", "Famille"}
	UpcomingStatuses    = []string{"Confirmé", "En attente", "Annulé"}
	BudgetCategories    = []string{"Backpack", "Confort", "Premium"}
	GearCategories      = []string{"Bagage", "Photo", "Tech", "Santé", "Vêtements", "Accessoires"}
	GearRecommendations = []string{"Indispensable", "Recommandé", "Optionnel", "À éviter"}
	InspirationTypes    = []string{"Top Liste", "Expérience", "Solo Travel", "Culture", "Gastronomie", "Road Trip"}
	Seasons             = []string{"Printemps", "Été", "Automne", "Hiver", "Toute l'année"}
	SkillLevels         = []string{"Débutant", "Intermédiaire", "Avancé"}
	TipTypes            = []string{"Budget", "Sécurité", "Matériel", "Transport", "Hébergement", "Santé", "Technologie"}
	TipImportances      = []string{"Essentiel", "Important", "Utile", "Bonus"}
	TipAudiences        = []string{"Débutants", "Voyageurs expérimentés", "Voyageurs solo", "Familles", "Backpackers", "Voyageurs luxe"}
)

// GuideMeta describes a travel guide.
type GuideMeta struct {
	Duration    string   `json:"duration"`
	Budget      string   `json:"budget"`
	Destination string   `json:"destination"`
	Difficulty  string   `json:"difficulty"`
	Highlights  []string `json:"highlights,omitempty"`
}

func (GuideMeta) Category() Category { return CategoryGuide }

func (m GuideMeta) Validate() error {
	return checkEnum("difficulty", m.Difficulty, GuideDifficulties)
}

// StoryMeta describes a travel story.
type StoryMeta struct {
	Location     string `json:"location"`
	Mood         string `json:"mood"`
	TripDuration string `json:"tripDuration"`
	TravelType   string `json:"travelType"`
}

func (StoryMeta) Category() Category { return CategoryStory }

func (m StoryMeta) Validate() error {
	if err := checkEnum("mood", m.Mood, StoryMoods); err != nil {
		return err
	}
	return checkEnum("travelType", m.TravelType, TravelTypes)
}

// ConcertMeta describes an attended concert.
type ConcertMeta struct {
	Artist      string   `json:"artist"`
	Venue       string   `json:"venue"`
	ConcertDate string   `json:"concertDate"`
	Genre       string   `json:"genre"`
	Rating      int      `json:"rating"`
	Capacity    string   `json:"capacity"`
	TicketPrice string   `json:"ticketPrice,omitempty"`
	Setlist     []string `json:"setlist,omitempty"`
}

func (ConcertMeta) Category() Category { return CategoryConcert }

func (m ConcertMeta) Validate() error {
	return checkRating(m.Rating)
}

// UpcomingConcertMeta describes a concert not yet attended.
type UpcomingConcertMeta struct {
	Artist      string `json:"artist"`
	Venue       string `json:"venue"`
	ConcertDate string `json:"concertDate"`
	Genre       string `json:"genre"`
	TicketURL   string `json:"ticketUrl,omitempty"`
	Price       string `json:"price,omitempty"`
	Status      string `json:"status"`
}

func (UpcomingConcertMeta) Category() Category { return CategoryUpcomingConcert }

func (m UpcomingConcertMeta) Validate() error {
	return checkEnum("status", m.Status, UpcomingStatuses)
}

// VenueMeta describes a concert venue.
type VenueMeta struct {
	Location         string   `json:"location"`
	Capacity         string   `json:"capacity"`
	Rating           int      `json:"rating"`
	Description      string   `json:"description"`
	BestFeatures     []string `json:"bestFeatures,omitempty"`
	ConcertsAttended int      `json:"concertsAttended"`
	Website          string   `json:"website,omitempty"`
}

func (VenueMeta) Category() Category { return CategoryVenue }

func (m VenueMeta) Validate() error {
	return checkRating(m.Rating)
}

// BudgetMeta describes a per-destination budget breakdown.
type BudgetMeta struct {
	Country        string `json:"country"`
	Flag           string `json:"flag"`
	DailyBudget    string `json:"dailyBudget"`
	BudgetCategory string `json:"budgetCategory"`
	Accommodation  string `json:"accommodation"`
	Food           string `json:"food"`
	Transport      string `json:"transport"`
	Activities     string `json:"activities"`
}

func (BudgetMeta) Category() Category { return CategoryBudget }

func (m BudgetMeta) Validate() error {
	return checkEnum("budgetCategory", m.BudgetCategory, BudgetCategories)
}

// GearMeta describes a tested piece of travel gear.
type GearMeta struct {
	ProductName    string   `json:"productName"`
	GearCategory   string   `json:"category"`
	Price          string   `json:"price"`
	Rating         int      `json:"rating"`
	Pros           []string `json:"pros,omitempty"`
	Cons           []string `json:"cons,omitempty"`
	BuyLink        string   `json:"buyLink,omitempty"`
	Tested         bool     `json:"tested"`
	Recommendation string   `json:"recommendation"`
}

func (GearMeta) Category() Category { return CategoryGear }

func (m GearMeta) Validate() error {
	if err := checkEnum("category", m.GearCategory, GearCategories); err != nil {
		return err
	}
	if err := checkEnum("recommendation", m.Recommendation, GearRecommendations); err != nil {
		return err
	}
	return checkRating(m.Rating)
}

// InspirationMeta describes an inspiration piece.
type InspirationMeta struct {
	InspirationType string `json:"inspirationType"`
	Region          string `json:"region"`
	Season          string `json:"season"`
	Difficulty      string `json:"difficulty"`
	EstimatedCost   string `json:"estimatedCost,omitempty"`
}

func (InspirationMeta) Category() Category { return CategoryInspiration }

func (m InspirationMeta) Validate() error {
	if err := checkEnum("inspirationType", m.InspirationType, InspirationTypes); err != nil {
		return err
	}
	if err := checkEnum("season", m.Season, Seasons); err != nil {
		return err
	}
	return checkEnum("difficulty", m.Difficulty, SkillLevels)
}

// TipMeta describes a practical travel tip.
type TipMeta struct {
	TipType        string `json:"tipType"`
	Importance     string `json:"importance"`
	TargetAudience string `json:"targetAudience"`
	EstimatedCost  string `json:"estimatedCost,omitempty"`
}

func (TipMeta) Category() Category { return CategoryTip }

func (m TipMeta) Validate() error {
	if err := checkEnum("tipType", m.TipType, TipTypes); err != nil {
		return err
	}
	if err := checkEnum("importance", m.Importance, TipImportances); err != nil {
		return err
	}
	return checkEnum("targetAudience", m.TargetAudience, TipAudiences)
}

// NewMetadata returns the zero metadata variant for a category. Unknown
// categories return nil.
func NewMetadata(c Category) Metadata {
	switch c {
	case CategoryGuide:
		return GuideMeta{}
	case CategoryStory:
		return StoryMeta{}
	case CategoryConcert:
		return ConcertMeta{}
	case CategoryUpcomingConcert:
		return UpcomingConcertMeta{}
	case CategoryVenue:
		return VenueMeta{}
	case CategoryBudget:
		return BudgetMeta{}
	case CategoryGear:
		return GearMeta{}
	case CategoryInspiration:
		return InspirationMeta{}
	case CategoryTip:
		return TipMeta{}
	}
	return nil
}

// EncodeMetadata serializes a metadata variant to JSON for storage. A nil
// variant encodes to an empty object.
func EncodeMetadata(m Metadata) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// DecodeMetadata dispatches on the record's category and unmarshals the
// stored JSON blob into the matching typed variant. An empty or absent blob
// decodes to the category's zero variant.
func DecodeMetadata(c Category, blob []byte) (Metadata, error) {
	if len(blob) == 0 {
		return NewMetadata(c), nil
	}
	switch c {
	case CategoryGuide:
		var m GuideMeta
		return unmarshalInto(blob, c, &m)
	case CategoryStory:
		var m StoryMeta
		return unmarshalInto(blob, c, &m)
	case CategoryConcert:
		var m ConcertMeta
		return unmarshalInto(blob, c, &m)
	case CategoryUpcomingConcert:
		var m UpcomingConcertMeta
		return unmarshalInto(blob, c, &m)
	case CategoryVenue:
		var m VenueMeta
		return unmarshalInto(blob, c, &m)
	case CategoryBudget:
		var m BudgetMeta
		return unmarshalInto(blob, c, &m)
	case CategoryGear:
		var m GearMeta
		return unmarshalInto(blob, c, &m)
	case CategoryInspiration:
		var m InspirationMeta
		return unmarshalInto(blob, c, &m)
	case CategoryTip:
		var m TipMeta
		return unmarshalInto(blob, c, &m)
	}
	return nil, fmt.Errorf("decode metadata: unknown category %q", c)
}

func unmarshalInto[T Metadata](blob []byte, c Category, m *T) (Metadata, error) {
	if err := json.Unmarshal(blob, m); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", c, err)
	}
	return *m, nil
}

// ParseMetadataForm builds the typed variant for cat from submitted form
// values. Only fields belonging to cat are read; anything the user typed
// while a different category was selected is discarded here, which is what
// keeps ghost metadata out of saved records.
func ParseMetadataForm(cat Category, get func(string) string) (Metadata, error) {
	switch cat {
	case CategoryGuide:
		return GuideMeta{
			Duration:    strings.TrimSpace(get("meta_duration")),
			Budget:      strings.TrimSpace(get("meta_budget")),
			Destination: strings.TrimSpace(get("meta_destination")),
			Difficulty:  get("meta_difficulty"),
			Highlights:  ParseTags(get("meta_highlights")),
		}, nil
	case CategoryStory:
		return StoryMeta{
			Location:     strings.TrimSpace(get("meta_location")),
			Mood:         get("meta_mood"),
			TripDuration: strings.TrimSpace(get("meta_tripDuration")),
			TravelType:   get("meta_travelType"),
		}, nil
	case CategoryConcert:
		rating, err := parseRating(get("meta_rating"))
		if err != nil {
			return nil, err
		}
		return ConcertMeta{
			Artist:      strings.TrimSpace(get("meta_artist")),
			Venue:       strings.TrimSpace(get("meta_venue")),
			ConcertDate: strings.TrimSpace(get("meta_concertDate")),
			Genre:       strings.TrimSpace(get("meta_genre")),
			Rating:      rating,
			Capacity:    strings.TrimSpace(get("meta_capacity")),
			TicketPrice: strings.TrimSpace(get("meta_ticketPrice")),
			Setlist:     ParseTags(get("meta_setlist")),
		}, nil
	case CategoryUpcomingConcert:
		return UpcomingConcertMeta{
			Artist:      strings.TrimSpace(get("meta_artist")),
			Venue:       strings.TrimSpace(get("meta_venue")),
			ConcertDate: strings.TrimSpace(get("meta_concertDate")),
			Genre:       strings.TrimSpace(get("meta_genre")),
			TicketURL:   strings.TrimSpace(get("meta_ticketUrl")),
			Price:       strings.TrimSpace(get("meta_price")),
			Status:      get("meta_status"),
		}, nil
	case CategoryVenue:
		rating, err := parseRating(get("meta_rating"))
		if err != nil {
			return nil, err
		}
		attended, err := parseCount(get("meta_concertsAttended"))
		if err != nil {
			return nil, err
		}
		return VenueMeta{
			Location:         strings.TrimSpace(get("meta_location")),
			Capacity:         strings.TrimSpace(get("meta_capacity")),
			Rating:           rating,
			Description:      strings.TrimSpace(get("meta_description")),
			BestFeatures:     ParseTags(get("meta_bestFeatures")),
			ConcertsAttended: attended,
			Website:          strings.TrimSpace(get("meta_website")),
		}, nil
	case CategoryBudget:
		return BudgetMeta{
			Country:        strings.TrimSpace(get("meta_country")),
			Flag:           strings.TrimSpace(get("meta_flag")),
			DailyBudget:    strings.TrimSpace(get("meta_dailyBudget")),
			BudgetCategory: get("meta_budgetCategory"),
			Accommodation:  strings.TrimSpace(get("meta_accommodation")),
			Food:           strings.TrimSpace(get("meta_food")),
			Transport:      strings.TrimSpace(get("meta_transport")),
			Activities:     strings.TrimSpace(get("meta_activities")),
		}, nil
	case CategoryGear:
		rating, err := parseRating(get("meta_rating"))
		if err != nil {
			return nil, err
		}
		return GearMeta{
			ProductName:    strings.TrimSpace(get("meta_productName")),
			GearCategory:   get("meta_category"),
			Price:          strings.TrimSpace(get("meta_price")),
			Rating:         rating,
			Pros:           ParseTags(get("meta_pros")),
			Cons:           ParseTags(get("meta_cons")),
			BuyLink:        strings.TrimSpace(get("meta_buyLink")),
			Tested:         get("meta_tested") != "",
			Recommendation: get("meta_recommendation"),
		}, nil
	case CategoryInspiration:
		return InspirationMeta{
			InspirationType: get("meta_inspirationType"),
			Region:          strings.TrimSpace(get("meta_region")),
			Season:          get("meta_season"),
			Difficulty:      get("meta_difficulty"),
			EstimatedCost:   strings.TrimSpace(get("meta_estimatedCost")),
		}, nil
	case CategoryTip:
		return TipMeta{
			TipType:        get("meta_tipType"),
			Importance:     get("meta_importance"),
			TargetAudience: get("meta_targetAudience"),
			EstimatedCost:  strings.TrimSpace(get("meta_estimatedCost")),
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidMetadata, cat)
}

// checkEnum accepts the empty string so drafts can be saved before every
// field is filled in; a non-empty value must be a member of allowed.
func checkEnum(field, v string, allowed []string) error {
	if v == "" {
		return nil
	}
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s must be one of %s, got %q", ErrInvalidMetadata, field, strings.Join(allowed, ", "), v)
}

// checkRating accepts 0 as "not rated yet"; otherwise the value must be 1-5.
func checkRating(r int) error {
	if r == 0 {
		return nil
	}
	if r < 1 || r > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5, got %d", ErrInvalidMetadata, r)
	}
	return nil
}

func parseRating(v string) (int, error) {
	if strings.TrimSpace(v) == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: rating is not a number: %q", ErrInvalidMetadata, v)
	}
	return n, nil
}

func parseCount(v string) (int, error) {
	if strings.TrimSpace(v) == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: expected a non-negative number, got %q", ErrInvalidMetadata, v)
	}
	return n, nil
}
