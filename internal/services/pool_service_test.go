package services

import (
	"context"
	"testing"
	"time"

	"poolride/internal/models"
	"poolride/internal/utils"
	"poolride/internal/validators"
	"poolride/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testUser(gender models.Gender, community ...string) *models.User {
	return &models.User{
		ID:         primitive.NewObjectID(),
		Name:       "Test Rider",
		Email:      primitive.NewObjectID().Hex() + "@example.com",
		Phone:      "9876543210",
		Gender:     gender,
		Community:  community,
		TrustScore: models.TrustScoreDefault,
	}
}

func testPool(creator *models.User, poolType models.PoolType, maxSeats int, departure time.Time) *models.Pool {
	return &models.Pool{
		ID:           primitive.NewObjectID(),
		Source:       "Indiranagar",
		Destination:  "Electronic City",
		SourceCoords: models.Coordinates{Lat: 12.97, Lng: 77.64},
		DestCoords:   models.Coordinates{Lat: 12.84, Lng: 77.66},
		Date:         departure,
		Time:         departure.Format("15:04"),
		MaxSeats:     maxSeats,
		Fare:         150,
		Type:         poolType,
		Status:       models.PoolStatusUpcoming,
		CreatedBy:    creator.ID,
		Participants: []models.Participant{
			{UserID: creator.ID, JoinedAt: time.Now(), Status: models.ParticipantJoined},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func joinPool(pool *models.Pool, user *models.User) {
	pool.Participants = append(pool.Participants, models.Participant{
		UserID:   user.ID,
		JoinedAt: time.Now(),
		Status:   models.ParticipantJoined,
	})
}

func assertAppCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr := utils.AsAppError(err)
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code, err)
	}
}

func newPoolService(userRepo *fakeUserRepo, poolRepo *fakePoolRepo) PoolService {
	return NewPoolService(poolRepo, userRepo, logger.NewDefault())
}

func TestCreatePool(t *testing.T) {
	ctx := context.Background()

	request := func() *validators.PoolCreateRequest {
		return &validators.PoolCreateRequest{
			Source:       "Indiranagar",
			Destination:  "Electronic City",
			SourceCoords: models.Coordinates{Lat: 12.97, Lng: 77.64},
			DestCoords:   models.Coordinates{Lat: 12.84, Lng: 77.66},
			Date:         time.Now().Add(24 * time.Hour),
			Time:         "09:30",
			MaxSeats:     4,
			Fare:         150,
		}
	}

	t.Run("creator is seeded as first participant", func(t *testing.T) {
		creator := testUser(models.GenderMale)
		service := newPoolService(newFakeUserRepo(creator), newFakePoolRepo())

		view, err := service.CreatePool(ctx, creator.ID, request())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !view.Pool.HasJoined(creator.ID) {
			t.Error("expected creator to be a joined participant")
		}
		if view.SeatsLeft != 3 {
			t.Errorf("expected 3 seats left, got %d", view.SeatsLeft)
		}
		if view.Pool.Type != models.PoolTypeOpen {
			t.Errorf("expected default type open, got %s", view.Pool.Type)
		}
		if view.Creator == nil || view.Creator.ID != creator.ID {
			t.Error("expected creator summary to be resolved")
		}
	})

	t.Run("male creator cannot open a women-only pool", func(t *testing.T) {
		creator := testUser(models.GenderMale)
		service := newPoolService(newFakeUserRepo(creator), newFakePoolRepo())

		req := request()
		req.Type = string(models.PoolTypeWomenOnly)
		_, err := service.CreatePool(ctx, creator.ID, req)
		assertAppCode(t, err, "WOMEN_ONLY")
	})

	t.Run("invalid seat count fails validation", func(t *testing.T) {
		creator := testUser(models.GenderMale)
		service := newPoolService(newFakeUserRepo(creator), newFakePoolRepo())

		req := request()
		req.MaxSeats = 9
		_, err := service.CreatePool(ctx, creator.ID, req)
		assertAppCode(t, err, "VALIDATION_ERROR")
	})
}

func TestJoinPool(t *testing.T) {
	ctx := context.Background()
	departure := time.Now().Add(24 * time.Hour)

	t.Run("join adds a participant", func(t *testing.T) {
		creator := testUser(models.GenderMale)
		rider := testUser(models.GenderFemale)
		pool := testPool(creator, models.PoolTypeOpen, 4, departure)
		poolRepo := newFakePoolRepo(pool)
		service := newPoolService(newFakeUserRepo(creator, rider), poolRepo)

		result, err := service.JoinPool(ctx, pool.ID, rider.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Pool.HasJoined(rider.ID) {
			t.Error("expected rider to be joined after join")
		}
		if result.Pool.SeatsLeft != 2 {
			t.Errorf("expected 2 seats left, got %d", result.Pool.SeatsLeft)
		}
	})

	t.Run("full pool is rejected without mutation", func(t *testing.T) {
		creator := testUser(models.GenderMale)
		rider := testUser(models.GenderFemale)
		pool := testPool(creator, models.PoolTypeOpen, 2, departure)
		joinPool(pool, testUser(models.GenderMale))
		poolRepo := newFakePoolRepo(pool)
		service := newPoolService(newFakeUserRepo(creator, rider), poolRepo)

		_, err := service.JoinPool(ctx, pool.ID, rider.ID)
		assertAppCode(t, err, "POOL_FULL")

		stored, _ := poolRepo.GetByID(ctx, pool.ID)
		if stored.FindParticipant(rider.ID) != nil {
			t.Error("expected rejected rider to leave no participant entry")
		}
	})

	t.Run("last seat race surfaces pool full", func(t *testing.T) {
		creator := testUser(models.GenderMale)
		rider := testUser(models.GenderFemale)
		racer := testUser(models.GenderMale)
		pool := testPool(creator, models.PoolTypeOpen, 2, departure)
		poolRepo := newFakePoolRepo(pool)
		// The pool fills between the service's read and its write.
		poolRepo.beforeAdd = func() {
			joinPool(poolRepo.pools[pool.ID], racer)
		}
		service := newPoolService(newFakeUserRepo(creator, rider, racer), poolRepo)

		_, err := service.JoinPool(ctx, pool.ID, rider.ID)
		assertAppCode(t, err, "POOL_FULL")

		stored, _ := poolRepo.GetByID(ctx, pool.ID)
		if stored.FindParticipant(rider.ID) != nil {
			t.Error("expected losing rider to leave no participant entry")
		}
		if stored.ActiveParticipants() != 2 {
			t.Errorf("expected 2 active participants, got %d", stored.ActiveParticipants())
		}
	})

	t.Run("women-only pool rejects male rider", func(t *testing.T) {
		creator := testUser(models.GenderFemale)
		rider := testUser(models.GenderMale)
		pool := testPool(creator, models.PoolTypeWomenOnly, 4, departure)
		service := newPoolService(newFakeUserRepo(creator, rider), newFakePoolRepo(pool))

		_, err := service.JoinPool(ctx, pool.ID, rider.ID)
		assertAppCode(t, err, "WOMEN_ONLY")
	})

	t.Run("community pool admits a member sharing one tag", func(t *testing.T) {
		creator := testUser(models.GenderMale, "acme-corp", "uni-east")
		member := testUser(models.GenderFemale, "uni-east")
		outsider := testUser(models.GenderFemale, "other-org")
		pool := testPool(creator, models.PoolTypeCommunity, 4, departure)
		service := newPoolService(newFakeUserRepo(creator, member, outsider), newFakePoolRepo(pool))

		if _, err := service.JoinPool(ctx, pool.ID, member.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err := service.JoinPool(ctx, pool.ID, outsider.ID)
		assertAppCode(t, err, "COMMUNITY_ONLY")
	})

	t.Run("leaver can rejoin through reactivation", func(t *testing.T) {
		creator := testUser(models.GenderMale)
		rider := testUser(models.GenderFemale)
		pool := testPool(creator, models.PoolTypeOpen, 4, departure)
		joinPool(pool, rider)
		pool.FindParticipant(rider.ID).Status = models.ParticipantLeft
		poolRepo := newFakePoolRepo(pool)
		service := newPoolService(newFakeUserRepo(creator, rider), poolRepo)

		result, err := service.JoinPool(ctx, pool.ID, rider.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Pool.HasJoined(rider.ID) {
			t.Error("expected rider to be rejoined")
		}

		stored, _ := poolRepo.GetByID(ctx, pool.ID)
		if len(stored.Participants) != 2 {
			t.Errorf("expected a single reused participant entry, got %d entries", len(stored.Participants))
		}
	})
}

func TestLeavePool(t *testing.T) {
	ctx := context.Background()

	t.Run("leaving well ahead of departure has no penalty", func(t *testing.T) {
		creator := testUser(models.GenderMale)
		rider := testUser(models.GenderFemale)
		pool := testPool(creator, models.PoolTypeOpen, 4, time.Now().Add(3*time.Hour))
		joinPool(pool, rider)
		userRepo := newFakeUserRepo(creator, rider)
		service := newPoolService(userRepo, newFakePoolRepo(pool))

		result, err := service.LeavePool(ctx, pool.ID, rider.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.PenaltyApplied {
			t.Error("expected no penalty for an early leave")
		}
		if userRepo.users[rider.ID].TrustScore != models.TrustScoreDefault {
			t.Errorf("expected trust score unchanged, got %d", userRepo.users[rider.ID].TrustScore)
		}
	})

	t.Run("leaving inside the notice window costs trust points", func(t *testing.T) {
		creator := testUser(models.GenderMale)
		rider := testUser(models.GenderFemale)
		pool := testPool(creator, models.PoolTypeOpen, 4, time.Now().Add(30*time.Minute))
		joinPool(pool, rider)
		userRepo := newFakeUserRepo(creator, rider)
		poolRepo := newFakePoolRepo(pool)
		service := newPoolService(userRepo, poolRepo)

		result, err := service.LeavePool(ctx, pool.ID, rider.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.PenaltyApplied {
			t.Error("expected a late-leave penalty")
		}

		want := models.TrustScoreDefault - utils.LatePenaltyPoints
		if got := userRepo.users[rider.ID].TrustScore; got != want {
			t.Errorf("trust score = %d, want %d", got, want)
		}

		stored, _ := poolRepo.GetByID(ctx, pool.ID)
		if stored.HasJoined(rider.ID) {
			t.Error("expected rider to be marked left")
		}
		if stored.FindParticipant(rider.ID).Status != models.ParticipantLeft {
			t.Error("expected participant entry to remain with left status")
		}
	})

	t.Run("creator cannot leave", func(t *testing.T) {
		creator := testUser(models.GenderMale)
		pool := testPool(creator, models.PoolTypeOpen, 4, time.Now().Add(3*time.Hour))
		service := newPoolService(newFakeUserRepo(creator), newFakePoolRepo(pool))

		_, err := service.LeavePool(ctx, pool.ID, creator.ID)
		assertAppCode(t, err, "CREATOR_CANNOT_LEAVE")
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel removes co-riders and penalizes the creator", func(t *testing.T) {
		creator := testUser(models.GenderMale)
		riderOne := testUser(models.GenderFemale)
		riderTwo := testUser(models.GenderMale)
		pool := testPool(creator, models.PoolTypeOpen, 4, time.Now().Add(3*time.Hour))
		joinPool(pool, riderOne)
		joinPool(pool, riderTwo)
		userRepo := newFakeUserRepo(creator, riderOne, riderTwo)
		poolRepo := newFakePoolRepo(pool)
		service := newPoolService(userRepo, poolRepo)

		result, err := service.UpdateStatus(ctx, pool.ID, creator.ID, models.PoolStatusCancelled)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.PenaltyApplied {
			t.Error("expected a cancellation penalty with committed co-riders")
		}

		want := models.TrustScoreDefault - utils.LatePenaltyPoints
		if got := userRepo.users[creator.ID].TrustScore; got != want {
			t.Errorf("creator trust score = %d, want %d", got, want)
		}
		if got := userRepo.users[riderOne.ID].TrustScore; got != models.TrustScoreDefault {
			t.Errorf("rider trust score = %d, want unchanged %d", got, models.TrustScoreDefault)
		}

		stored, _ := poolRepo.GetByID(ctx, pool.ID)
		if stored.Status != models.PoolStatusCancelled {
			t.Errorf("pool status = %s, want cancelled", stored.Status)
		}
		if stored.FindParticipant(riderOne.ID).Status != models.ParticipantRemoved {
			t.Error("expected rider one to be force-removed")
		}
		if stored.FindParticipant(riderTwo.ID).Status != models.ParticipantRemoved {
			t.Error("expected rider two to be force-removed")
		}
		if !stored.HasJoined(creator.ID) {
			t.Error("expected creator entry to stay joined")
		}
	})

	t.Run("solo cancel has no penalty", func(t *testing.T) {
		creator := testUser(models.GenderMale)
		pool := testPool(creator, models.PoolTypeOpen, 4, time.Now().Add(3*time.Hour))
		userRepo := newFakeUserRepo(creator)
		service := newPoolService(userRepo, newFakePoolRepo(pool))

		result, err := service.UpdateStatus(ctx, pool.ID, creator.ID, models.PoolStatusCancelled)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.PenaltyApplied {
			t.Error("expected no penalty for a solo cancel")
		}
		if userRepo.users[creator.ID].TrustScore != models.TrustScoreDefault {
			t.Error("expected creator trust score unchanged")
		}
	})

	t.Run("only the creator can cancel", func(t *testing.T) {
		creator := testUser(models.GenderMale)
		rider := testUser(models.GenderFemale)
		pool := testPool(creator, models.PoolTypeOpen, 4, time.Now().Add(3*time.Hour))
		joinPool(pool, rider)
		service := newPoolService(newFakeUserRepo(creator, rider), newFakePoolRepo(pool))

		_, err := service.UpdateStatus(ctx, pool.ID, rider.ID, models.PoolStatusCancelled)
		assertAppCode(t, err, "NOT_CREATOR")
	})

	t.Run("cannot complete before departure", func(t *testing.T) {
		creator := testUser(models.GenderMale)
		pool := testPool(creator, models.PoolTypeOpen, 4, time.Now().Add(2*time.Hour))
		service := newPoolService(newFakeUserRepo(creator), newFakePoolRepo(pool))

		_, err := service.UpdateStatus(ctx, pool.ID, creator.ID, models.PoolStatusCompleted)
		assertAppCode(t, err, "NOT_DEPARTED")
	})

	t.Run("complete after departure", func(t *testing.T) {
		creator := testUser(models.GenderMale)
		pool := testPool(creator, models.PoolTypeOpen, 4, time.Now().Add(-2*time.Hour))
		poolRepo := newFakePoolRepo(pool)
		service := newPoolService(newFakeUserRepo(creator), poolRepo)

		result, err := service.UpdateStatus(ctx, pool.ID, creator.ID, models.PoolStatusCompleted)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Pool.Status != models.PoolStatusCompleted {
			t.Errorf("pool status = %s, want completed", result.Pool.Status)
		}
	})

	t.Run("cancelled pool cannot be restarted", func(t *testing.T) {
		creator := testUser(models.GenderMale)
		pool := testPool(creator, models.PoolTypeOpen, 4, time.Now().Add(3*time.Hour))
		pool.Status = models.PoolStatusCancelled
		service := newPoolService(newFakeUserRepo(creator), newFakePoolRepo(pool))

		_, err := service.UpdateStatus(ctx, pool.ID, creator.ID, models.PoolStatusOngoing)
		assertAppCode(t, err, "INVALID_TRANSITION")
	})
}

func TestDeletePool(t *testing.T) {
	ctx := context.Background()

	t.Run("solo creator can delete", func(t *testing.T) {
		creator := testUser(models.GenderMale)
		pool := testPool(creator, models.PoolTypeOpen, 4, time.Now().Add(3*time.Hour))
		poolRepo := newFakePoolRepo(pool)
		service := newPoolService(newFakeUserRepo(creator), poolRepo)

		if err := service.DeletePool(ctx, pool.ID, creator.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := poolRepo.GetByID(ctx, pool.ID); err == nil {
			t.Error("expected pool to be gone")
		}
	})

	t.Run("delete blocked with active co-riders", func(t *testing.T) {
		creator := testUser(models.GenderMale)
		rider := testUser(models.GenderFemale)
		pool := testPool(creator, models.PoolTypeOpen, 4, time.Now().Add(3*time.Hour))
		joinPool(pool, rider)
		service := newPoolService(newFakeUserRepo(creator, rider), newFakePoolRepo(pool))

		err := service.DeletePool(ctx, pool.ID, creator.ID)
		assertAppCode(t, err, "ACTIVE_CO_RIDERS")
	})
}

func TestListPoolsVisibility(t *testing.T) {
	ctx := context.Background()
	departure := time.Now().Add(24 * time.Hour)

	creator := testUser(models.GenderMale, "acme-corp")
	femaleCreator := testUser(models.GenderFemale)
	viewer := testUser(models.GenderMale, "other-org")

	openPool := testPool(creator, models.PoolTypeOpen, 4, departure)
	womenPool := testPool(femaleCreator, models.PoolTypeWomenOnly, 4, departure)
	communityPool := testPool(creator, models.PoolTypeCommunity, 4, departure)

	userRepo := newFakeUserRepo(creator, femaleCreator, viewer)
	poolRepo := newFakePoolRepo(openPool, womenPool, communityPool)
	service := newPoolService(userRepo, poolRepo)

	t.Run("plain listing returns every upcoming pool", func(t *testing.T) {
		views, meta, err := service.ListPools(ctx, viewer.ID, &validators.PoolListQuery{}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(views) != 3 {
			t.Errorf("expected 3 pools, got %d", len(views))
		}
		if meta != nil {
			t.Error("expected no pagination meta without a page")
		}
	})

	t.Run("paged listing reports the total match count", func(t *testing.T) {
		page := &utils.PaginationParams{Page: 1, PageSize: 20, Sort: "date", Order: "asc"}
		_, meta, err := service.ListPools(ctx, viewer.ID, &validators.PoolListQuery{}, page)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if meta == nil || meta.Total != 3 {
			t.Errorf("expected pagination meta with total 3, got %+v", meta)
		}
	})

	t.Run("visible listing hides restricted pools from the viewer", func(t *testing.T) {
		views, _, err := service.ListPools(ctx, viewer.ID, &validators.PoolListQuery{Visible: true}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(views) != 1 {
			t.Fatalf("expected only the open pool, got %d pools", len(views))
		}
		if views[0].Pool.ID != openPool.ID {
			t.Error("expected the surviving pool to be the open one")
		}
	})

	t.Run("type filter narrows the listing", func(t *testing.T) {
		views, _, err := service.ListPools(ctx, viewer.ID, &validators.PoolListQuery{Type: string(models.PoolTypeWomenOnly)}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(views) != 1 || views[0].Pool.Type != models.PoolTypeWomenOnly {
			t.Errorf("expected exactly the women-only pool, got %d pools", len(views))
		}
	})
}

func TestCleanupOldPools(t *testing.T) {
	ctx := context.Background()
	creator := testUser(models.GenderMale)

	stale := testPool(creator, models.PoolTypeOpen, 4, time.Now().Add(-20*24*time.Hour))
	stale.Status = models.PoolStatusCompleted
	stale.UpdatedAt = time.Now().Add(-15 * 24 * time.Hour)

	fresh := testPool(creator, models.PoolTypeOpen, 4, time.Now().Add(-3*24*time.Hour))
	fresh.Status = models.PoolStatusCompleted
	fresh.UpdatedAt = time.Now().Add(-3 * 24 * time.Hour)

	upcoming := testPool(creator, models.PoolTypeOpen, 4, time.Now().Add(24*time.Hour))
	upcoming.UpdatedAt = time.Now().Add(-15 * 24 * time.Hour)

	poolRepo := newFakePoolRepo(stale, fresh, upcoming)
	service := newPoolService(newFakeUserRepo(creator), poolRepo)

	deleted, err := service.CleanupOldPools(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted pool, got %d", deleted)
	}

	if _, err := poolRepo.GetByID(ctx, stale.ID); err == nil {
		t.Error("expected stale completed pool to be deleted")
	}
	if _, err := poolRepo.GetByID(ctx, fresh.ID); err != nil {
		t.Error("expected recent completed pool to survive")
	}
	if _, err := poolRepo.GetByID(ctx, upcoming.ID); err != nil {
		t.Error("expected upcoming pool to survive")
	}
}
