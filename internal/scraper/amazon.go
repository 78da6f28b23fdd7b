package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoASIN is returned when a URL carries no recognizable Amazon product id.
var ErrNoASIN = errors.New("could not extract ASIN from URL")

// ErrBlocked is returned when the product page yields no title, which usually
// means Amazon served a bot interstitial instead of the product.
var ErrBlocked = errors.New("could not extract product name, page may be blocked")

var asinPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/dp/([A-Z0-9]{10})`),
	regexp.MustCompile(`(?i)/gp/product/([A-Z0-9]{10})`),
	regexp.MustCompile(`(?i)/product/([A-Z0-9]{10})`),
	regexp.MustCompile(`(?i)[?&]asin=([A-Z0-9]{10})`),
}

// Product is one scraped Amazon listing.
type Product struct {
	ASIN        string  `json:"asin"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Brand       string  `json:"brand,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	ReviewCount int     `json:"review_count"`
	InStock     bool    `json:"in_stock"`
	Link        string  `json:"link"`
}

// AmazonScraper fetches product detail pages and extracts listing fields.
type AmazonScraper struct {
	client *http.Client
}

func NewAmazonScraper() *AmazonScraper {
	return &AmazonScraper{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// ExtractASIN pulls the 10-character product id out of any common Amazon URL
// shape (/dp/, /gp/product/, /product/, ?asin=).
func ExtractASIN(url string) (string, bool) {
	for _, pattern := range asinPatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return strings.ToUpper(m[1]), true
		}
	}
	return "", false
}

// Scrape fetches an Amazon product page by URL. It normalizes the URL to the
// canonical /dp/ASIN form before fetching.
func (s *AmazonScraper) Scrape(ctx context.Context, url string) (*Product, error) {
	asin, ok := ExtractASIN(url)
	if !ok {
		return nil, ErrNoASIN
	}

	productURL := "https://www.amazon.com/dp/" + asin

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, productURL, nil)
	if err != nil {
		return nil, err
	}
	setBrowserHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch product page: HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product page: %w", err)
	}

	return parseProduct(doc, asin, productURL)
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Cache-Control", "max-age=0")
}

func parseProduct(doc *goquery.Document, asin, productURL string) (*Product, error) {
	name := firstText(doc, "#productTitle", ".product-title", "#title")
	if name == "" {
		return nil, ErrBlocked
	}

	p := &Product{
		ASIN:     asin,
		Name:     name,
		Currency: "USD",
		Link:     productURL,
		InStock:  true,
	}

	for _, sel := range []string{".a-price .a-offscreen", ".a-price-whole", "#priceblock_ourprice", "#priceblock_dealprice", ".a-price"} {
		if price, ok := cleanPrice(firstText(doc, sel)); ok {
			p.Price = price
			break
		}
	}

	p.ImageURL = extractImage(doc)
	p.Brand = cleanBrand(firstText(doc, "#bylineInfo", ".po-brand", "#brand"))
	p.Description = extractDescription(doc)

	for _, sel := range []string{"#acrPopover .a-icon-alt", ".a-icon-alt", "#acrPopover"} {
		if rating, ok := cleanRating(firstText(doc, sel)); ok {
			p.Rating = rating
			break
		}
	}

	reviewText := firstText(doc, "#acrCustomerReviewText")
	if strings.Contains(strings.ToLower(reviewText), "rating") {
		if count, ok := cleanReviewCount(reviewText); ok {
			p.ReviewCount = count
		}
	}

	for _, sel := range []string{"#availability", ".a-size-medium.a-color-price"} {
		stockText := strings.ToLower(firstText(doc, sel))
		if stockText == "" {
			continue
		}
		if strings.Contains(stockText, "unavailable") || strings.Contains(stockText, "out of stock") {
			p.InStock = false
			break
		}
	}

	return p, nil
}

// firstText returns the trimmed text of the first selector that matches a
// non-empty element.
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func extractImage(doc *goquery.Document) string {
	for _, sel := range []string{"img#landingImage", "img#imgBlkFront", "img.a-dynamic-image"} {
		element := doc.Find(sel).First()
		if element.Length() == 0 {
			continue
		}
		for _, attr := range []string{"src", "data-old-hires", "data-a-dynamic-image"} {
			value, ok := element.Attr(attr)
			if !ok || value == "" {
				continue
			}
			// data-a-dynamic-image holds a JSON map of URL to dimensions.
			if strings.HasPrefix(value, "{") {
				var imageMap map[string]any
				if err := json.Unmarshal([]byte(value), &imageMap); err == nil {
					for url := range imageMap {
						return url
					}
				}
				continue
			}
			return value
		}
	}
	return ""
}

func extractDescription(doc *goquery.Document) string {
	for _, sel := range []string{"#feature-bullets", "#productDescription"} {
		element := doc.Find(sel).First()
		if element.Length() == 0 {
			continue
		}

		var bullets []string
		element.Find("li").EachWithBreak(func(_ int, item *goquery.Selection) bool {
			if text := strings.TrimSpace(item.Text()); text != "" {
				bullets = append(bullets, text)
			}
			return len(bullets) < 5
		})
		if len(bullets) > 0 {
			return strings.Join(bullets, " ")
		}

		text := strings.TrimSpace(element.Text())
		if len(text) > 500 {
			text = text[:500]
		}
		if text != "" {
			return text
		}
	}
	return ""
}

var (
	priceRe       = regexp.MustCompile(`[\d]+\.?\d*`)
	ratingOutOfRe = regexp.MustCompile(`(?i)([\d.]+)\s*out of`)
	ratingDigitRe = regexp.MustCompile(`(\d+\.?\d*)`)
	reviewDigitRe = regexp.MustCompile(`(\d+)`)
	visitStoreRe  = regexp.MustCompile(`(?i)Visit the (.+?) Store`)
	brandPrefixRe = regexp.MustCompile(`(?i)Brand:\s*`)
)

func cleanPrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	m := priceRe.FindString(strings.ReplaceAll(text, ",", ""))
	if m == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(m, 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}

func cleanRating(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	if m := ratingOutOfRe.FindStringSubmatch(text); m != nil {
		if rating, err := strconv.ParseFloat(m[1], 64); err == nil {
			return rating, true
		}
	}
	if m := ratingDigitRe.FindStringSubmatch(text); m != nil {
		if rating, err := strconv.ParseFloat(m[1], 64); err == nil && rating >= 0 && rating <= 5 {
			return rating, true
		}
	}
	return 0, false
}

func cleanReviewCount(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	cleaned := strings.NewReplacer(",", "", ".", "").Replace(text)
	m := reviewDigitRe.FindStringSubmatch(cleaned)
	if m == nil {
		return 0, false
	}
	count, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return count, true
}

func cleanBrand(text string) string {
	if text == "" {
		return ""
	}
	if m := visitStoreRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	return strings.TrimSpace(brandPrefixRe.ReplaceAllString(text, ""))
}
