/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package store_test

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/openshift-kni/oran-dsapi/internal/service/common/auth"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/db/models"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/db/repo"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/db/repo/generated"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/store"
	typederrors "github.com/openshift-kni/oran-dsapi/internal/typed-errors"
)

var _ = Describe("Store", func() {
	var (
		ctrl     *gomock.Controller
		mockRepo *generated.MockRepositoryInterface
		s        *store.Store
		ctx      context.Context
		id       uuid.UUID
		stored   *models.DataSubscription
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		mockRepo = generated.NewMockRepositoryInterface(ctrl)
		s = store.NewStore(mockRepo)
		ctx = auth.WithIdentity(context.Background(), &auth.Identity{
			TenantID: "T2",
			Subject:  "CN=ValidClient",
		})
		id = uuid.New()
		stored = &models.DataSubscription{
			ID:              id,
			Subscriber:      "/a/b/T1",
			Producer:        "/x/y/T2",
			DataSourceID:    "D1",
			DestinationPath: "/p",
			Version:         4,
			Active:          true,
		}
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	Describe("Create", func() {
		var request store.CreateRequest

		BeforeEach(func() {
			request = store.CreateRequest{
				Subscriber:      "/a/b/T1",
				Producer:        "/x/y/T2",
				DataSourceID:    "D1",
				DestinationPath: "/p",
			}
		})

		It("defaults both watermarks to the epoch", func() {
			mockRepo.EXPECT().CreateDataSubscription(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, record models.DataSubscription) (*models.DataSubscription, error) {
					Expect(record.BeginWatermark).To(Equal(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)))
					Expect(record.UpperWatermark).To(Equal(record.BeginWatermark))
					Expect(record.Active).To(BeTrue())
					record.ID = id
					return &record, nil
				})

			created, err := s.Create(ctx, request)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(Equal(id))
		})

		It("sets the upper watermark to the given begin watermark", func() {
			begin := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
			active := false
			request.BeginWatermark = &begin
			request.Active = &active
			mockRepo.EXPECT().CreateDataSubscription(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, record models.DataSubscription) (*models.DataSubscription, error) {
					Expect(record.BeginWatermark).To(Equal(begin))
					Expect(record.UpperWatermark).To(Equal(begin))
					Expect(record.Active).To(BeFalse())
					record.ID = id
					return &record, nil
				})

			_, err := s.Create(ctx, request)
			Expect(err).NotTo(HaveOccurred())
		})

		It("passes conflicts through", func() {
			mockRepo.EXPECT().CreateDataSubscription(gomock.Any(), gomock.Any()).
				Return(nil, typederrors.NewConflictError(nil, repo.ConflictMessage))

			_, err := s.Create(ctx, request)
			Expect(typederrors.IsConflictError(err)).To(BeTrue())
		})

		It("rejects a producer of another tenant before storing anything", func() {
			request.Producer = "/x/y/T3"

			_, err := s.Create(ctx, request)
			Expect(typederrors.IsAuthorizationError(err)).To(BeTrue())
		})

		It("rejects incomplete requests", func() {
			request.DataSourceID = ""

			_, err := s.Create(ctx, request)
			Expect(typederrors.IsValidationError(err)).To(BeTrue())
		})

		It("leaves storage failures unclassified", func() {
			mockRepo.EXPECT().CreateDataSubscription(gomock.Any(), gomock.Any()).
				Return(nil, errors.New("connection refused"))

			_, err := s.Create(ctx, request)
			Expect(err).To(HaveOccurred())
			Expect(typederrors.IsConflictError(err)).To(BeFalse())
			Expect(typederrors.IsValidationError(err)).To(BeFalse())
		})
	})

	Describe("Get", func() {
		It("returns the subscription of the caller tenant", func() {
			mockRepo.EXPECT().GetDataSubscription(gomock.Any(), id).Return(stored, nil)

			record, err := s.Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(record.Version).To(Equal(4))
		})

		It("returns not found when absent", func() {
			mockRepo.EXPECT().GetDataSubscription(gomock.Any(), id).Return(nil, nil)

			_, err := s.Get(ctx, id)
			Expect(typederrors.IsNotFoundError(err)).To(BeTrue())
		})

		It("hides subscriptions of other tenants", func() {
			stored.Producer = "/x/y/T3"
			mockRepo.EXPECT().GetDataSubscription(gomock.Any(), id).Return(stored, nil)

			_, err := s.Get(ctx, id)
			Expect(typederrors.IsAuthorizationError(err)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		It("requires an identity", func() {
			mockRepo.EXPECT().GetDataSubscription(gomock.Any(), id).Return(stored, nil)

			err := s.Update(context.Background(), id, 4, store.UpdateRequest{})
			Expect(typederrors.IsAuthenticationError(err)).To(BeTrue())
		})

		It("writes the patch gated on the given version", func() {
			active := false
			mockRepo.EXPECT().GetDataSubscription(gomock.Any(), id).Return(stored, nil)
			mockRepo.EXPECT().UpdateDataSubscription(gomock.Any(), id, 4, models.DataSubscriptionPatch{Active: &active}).
				Return(true, nil)

			Expect(s.Update(ctx, id, 4, store.UpdateRequest{Active: &active})).To(Succeed())
		})

		It("fails the precondition on a stale version", func() {
			mockRepo.EXPECT().GetDataSubscription(gomock.Any(), id).Return(stored, nil).Times(2)
			mockRepo.EXPECT().UpdateDataSubscription(gomock.Any(), id, 3, gomock.Any()).Return(false, nil)

			err := s.Update(ctx, id, 3, store.UpdateRequest{})
			Expect(typederrors.IsPreconditionFailedError(err)).To(BeTrue())
			Expect(err.Error()).To(Equal(store.PreconditionFailedMessage))
		})

		It("returns not found when deleted after it was read", func() {
			gomock.InOrder(
				mockRepo.EXPECT().GetDataSubscription(gomock.Any(), id).Return(stored, nil),
				mockRepo.EXPECT().UpdateDataSubscription(gomock.Any(), id, 4, gomock.Any()).Return(false, nil),
				mockRepo.EXPECT().GetDataSubscription(gomock.Any(), id).Return(nil, nil),
			)

			err := s.Update(ctx, id, 4, store.UpdateRequest{})
			Expect(typederrors.IsNotFoundError(err)).To(BeTrue())
			Expect(err.Error()).To(Equal(store.NotFoundMessage))
		})

		It("does not write subscriptions of other tenants", func() {
			stored.Producer = "/x/y/T3"
			mockRepo.EXPECT().GetDataSubscription(gomock.Any(), id).Return(stored, nil)

			err := s.Update(ctx, id, 4, store.UpdateRequest{})
			Expect(typederrors.IsAuthorizationError(err)).To(BeTrue())
		})

		It("returns not found when absent", func() {
			mockRepo.EXPECT().GetDataSubscription(gomock.Any(), id).Return(nil, nil)

			err := s.Update(ctx, id, 0, store.UpdateRequest{})
			Expect(typederrors.IsNotFoundError(err)).To(BeTrue())
		})

		It("rejects an empty destination path", func() {
			empty := ""

			err := s.Update(ctx, id, 0, store.UpdateRequest{DestinationPath: &empty})
			Expect(typederrors.IsValidationError(err)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("deletes regardless of the version", func() {
			stored.Version = 17
			mockRepo.EXPECT().GetDataSubscription(gomock.Any(), id).Return(stored, nil)
			mockRepo.EXPECT().DeleteDataSubscription(gomock.Any(), id).Return(true, nil)

			Expect(s.Delete(ctx, id)).To(Succeed())
		})

		It("does not delete subscriptions of other tenants", func() {
			stored.Producer = "/x/y/T3"
			mockRepo.EXPECT().GetDataSubscription(gomock.Any(), id).Return(stored, nil)

			err := s.Delete(ctx, id)
			Expect(typederrors.IsAuthorizationError(err)).To(BeTrue())
		})

		It("returns not found when absent", func() {
			mockRepo.EXPECT().GetDataSubscription(gomock.Any(), id).Return(nil, nil)

			err := s.Delete(ctx, id)
			Expect(typederrors.IsNotFoundError(err)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("keeps only the subscriptions of the caller tenant and reports the raw page size", func() {
			mine, theirs := uuid.New(), uuid.New()
			mockRepo.EXPECT().ListDataSubscriptions(gomock.Any(), repo.ListFilter{
				Subscriber: "/a/b/T1",
				Skip:       0,
				Top:        2,
			}).Return([]models.DataSubscription{
				{ID: mine, Producer: "/x/y/T2"},
				{ID: theirs, Producer: "/x/y/T3"},
			}, nil)

			result, err := s.List(ctx, store.ListRequest{Subscriber: "/a/b/T1", Top: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.PageSize).To(Equal(2))
			Expect(result.Items).To(HaveLen(1))
			Expect(result.Items[0].ID).To(Equal(mine))
		})

		It("requires the subscriber", func() {
			_, err := s.List(ctx, store.ListRequest{Top: 50})
			Expect(typederrors.IsValidationError(err)).To(BeTrue())
			Expect(err.Error()).To(Equal(store.SubscriberRequiredMessage))
		})

		It("requires an identity", func() {
			_, err := s.List(context.Background(), store.ListRequest{Subscriber: "/a/b/T1", Top: 50})
			Expect(typederrors.IsAuthenticationError(err)).To(BeTrue())
		})
	})
})
