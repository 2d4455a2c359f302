// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package objectstore_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/MisterRaindrop/bigdata-docker/config"
	"github.com/MisterRaindrop/bigdata-docker/objectstore"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucketer struct {
	headErr   error
	createErr error

	created []string
}

func (f *fakeBucketer) HeadBucket(_ context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}

	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeBucketer) CreateBucket(_ context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, aws.ToString(in.Bucket))

	return &s3.CreateBucketOutput{}, nil
}

func TestEnsureBucket(t *testing.T) {
	tests := []struct {
		name      string
		headErr   error
		createErr error
		created   bool
		errMsg    string
	}{
		{name: "exists"},
		{name: "missing (typed)", headErr: &types.NotFound{}, created: true},
		{name: "missing (api code)", headErr: &smithy.GenericAPIError{Code: "NoSuchBucket"}, created: true},
		{
			name:      "created concurrently",
			headErr:   &types.NotFound{},
			createErr: &types.BucketAlreadyOwnedByYou{},
		},
		{
			name:    "forbidden",
			headErr: &smithy.GenericAPIError{Code: "Forbidden", Message: "access denied"},
			errMsg:  `failed to check bucket "warehouse"`,
		},
		{
			name:      "create fails",
			headErr:   &types.NotFound{},
			createErr: errors.New("disk full"),
			errMsg:    `failed to create bucket "warehouse": disk full`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeBucketer{headErr: tt.headErr, createErr: tt.createErr}

			created, err := objectstore.EnsureBucket(context.Background(), fake, "warehouse")
			if tt.errMsg != "" {
				assert.ErrorContains(t, err, tt.errMsg)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.created, created)
			if tt.created {
				assert.Equal(t, []string{"warehouse"}, fake.created)
			}
		})
	}
}

func TestEnsureBucketEmptyName(t *testing.T) {
	_, err := objectstore.EnsureBucket(context.Background(), &fakeBucketer{}, "")
	assert.ErrorIs(t, err, objectstore.ErrNoBucket)
}

func TestEnsureBucketAgainstFakeS3(t *testing.T) {
	var (
		mx      sync.Mutex
		buckets = map[string]bool{}
		paths   []string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		mx.Lock()
		defer mx.Unlock()
		paths = append(paths, req.Method+" "+req.URL.Path)

		switch req.Method {
		case http.MethodHead:
			if !buckets[req.URL.Path] {
				w.WriteHeader(http.StatusNotFound)

				return
			}
		case http.MethodPut:
			buckets[req.URL.Path] = true
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cl, err := objectstore.NewClient(context.Background(), config.StorageConfig{
		Endpoint:        srv.URL,
		Region:          "us-east-1",
		AccessKeyID:     "minio_root",
		SecretAccessKey: "m1n1opwd",
		PathStyleAccess: true,
	})
	require.NoError(t, err)

	created, err := objectstore.EnsureBucket(context.Background(), cl, "warehouse")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = objectstore.EnsureBucket(context.Background(), cl, "warehouse")
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, []string{
		"HEAD /warehouse",
		"PUT /warehouse",
		"HEAD /warehouse",
	}, paths)
}
