package perftests

import (
	"context"
	"fmt"
	"testing"
	"time"

	model "github.com/MaxLisniak/commerce/internal/models"
	repository "github.com/MaxLisniak/commerce/internal/repository"
)

const ownerID = "owner"

func userID(i int) string    { return fmt.Sprintf("user_%d", i) }
func listingID(i int) string { return fmt.Sprintf("listing_%d", i) }

// seedRepo creates an owner, numUsers bidders and numListings open listings
func seedRepo(tb testing.TB, numUsers, numListings int, startingPrice int64) *repository.MemoryRepo {
	tb.Helper()
	ctx := context.Background()
	repo := repository.NewMemoryRepo()

	if err := repo.CreateUser(ctx, model.User{UserID: ownerID, Username: ownerID, CreatedAt: time.Now()}); err != nil {
		tb.Fatalf("failed to seed owner: %v", err)
	}
	for i := 0; i < numUsers; i++ {
		if err := repo.CreateUser(ctx, model.User{UserID: userID(i), Username: userID(i), CreatedAt: time.Now()}); err != nil {
			tb.Fatalf("failed to seed user: %v", err)
		}
	}
	for i := 0; i < numListings; i++ {
		err := repo.CreateListing(ctx, model.Listing{
			ListingID:     listingID(i),
			Title:         fmt.Sprintf("title_%d", i),
			Description:   "Benchmark listing",
			StartingPrice: startingPrice,
			OwnerID:       ownerID,
			Active:        true,
			CreatedAt:     time.Now(),
		})
		if err != nil {
			tb.Fatalf("failed to seed listing: %v", err)
		}
	}
	return repo
}
